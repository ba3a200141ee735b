package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/highpoint-ops/gearlog/internal/imaging"
	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// webEquipmentID joins the two path segments of an equipment route back into
// an id like "R/001".
func webEquipmentID(r *http.Request) (string, error) {
	id := r.PathValue("type") + "/" + r.PathValue("num")
	if _, _, err := model.ParseEquipmentID(id); err != nil {
		return "", err
	}
	return id, nil
}

// EquipmentPage handles GET /equipment: the full list plus the intake form.
func (s *Server) EquipmentPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	q := r.URL.Query()
	filter := store.EquipmentFilter{
		Status:   q.Get("status"),
		TypeCode: q.Get("type"),
		Search:   q.Get("q"),
	}
	equipment, err := store.ListEquipment(r.Context(), s.DB, filter)
	if err != nil {
		slog.Error("failed to list equipment", "error", err)
	}
	types, err := store.ListEquipmentTypes(r.Context(), s.DB, true)
	if err != nil {
		slog.Error("failed to list equipment types", "error", err)
	}

	s.Templates.Render(w, "equipment.html", &struct {
		PageData
		Equipment []model.Equipment
		Types     []model.EquipmentType
		Filter    store.EquipmentFilter
	}{
		PageData:  PageData{Title: "Equipment", User: claims, Token: GetWebToken(r.Context())},
		Equipment: equipment,
		Types:     types,
		Filter:    filter,
	})
}

// EquipmentCreateSubmit handles POST /equipment. A quantity above one turns
// the intake into a batch; serial numbers come one per line.
func (s *Server) EquipmentCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	base := &model.Equipment{
		TypeCode:             r.FormValue("type_code"),
		Name:                 r.FormValue("name"),
		SerialNumber:         r.FormValue("serial_number"),
		DateAddedToInventory: r.FormValue("date_added_to_inventory"),
		DatePutInService:     r.FormValue("date_put_in_service"),
		Notes:                r.FormValue("notes"),
	}

	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	if quantity > 1 {
		var serials []string
		for _, line := range strings.Split(r.FormValue("serial_numbers"), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				serials = append(serials, line)
			}
		}
		result, err := store.BatchCreateEquipment(r.Context(), s.DB, base, serials, quantity, claims.Username)
		if err != nil {
			slog.Warn("batch equipment intake failed", "error", err, "user", claims.Username)
		} else {
			slog.Info("equipment batch created", "user", claims.Username, "type", base.TypeCode,
				"created", result.SuccessCount(), "rejected", result.FailureCount())
		}
		http.Redirect(w, r, "/equipment", http.StatusSeeOther)
		return
	}

	created, err := store.CreateEquipment(r.Context(), s.DB, base, claims.Username)
	if err != nil {
		slog.Warn("equipment intake failed", "error", err, "user", claims.Username)
		http.Redirect(w, r, "/equipment", http.StatusSeeOther)
		return
	}

	slog.Info("equipment created", "user", claims.Username, "equipment", created.EquipmentID)
	http.Redirect(w, r, "/equipment/"+created.EquipmentID, http.StatusSeeOther)
}

// EquipmentDetailPage handles GET /equipment/{type}/{num}.
func (s *Server) EquipmentDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := webEquipmentID(r)
	if err != nil {
		http.Error(w, "invalid equipment id", http.StatusBadRequest)
		return
	}

	equipment, err := store.GetEquipment(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get equipment", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if equipment == nil {
		http.Error(w, "equipment not found", http.StatusNotFound)
		return
	}

	inspections, err := store.ListInspections(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list inspections", "error", err)
	}
	history, err := store.ListStatusChanges(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list status history", "error", err)
	}

	s.Templates.Render(w, "equipment_detail.html", &struct {
		PageData
		Equipment   *model.Equipment
		Inspections []model.Inspection
		History     []model.StatusChange
		Today       string
	}{
		PageData:    PageData{Title: equipment.EquipmentID, User: claims, Token: GetWebToken(r.Context())},
		Equipment:   equipment,
		Inspections: inspections,
		History:     history,
		Today:       model.FormatDate(model.DateOnly(time.Now())),
	})
}

// EquipmentUpdateSubmit handles POST /equipment/{type}/{num}.
func (s *Server) EquipmentUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := webEquipmentID(r)
	if err != nil {
		http.Error(w, "invalid equipment id", http.StatusBadRequest)
		return
	}

	err = store.UpdateEquipment(r.Context(), s.DB, id,
		r.FormValue("name"), r.FormValue("serial_number"),
		r.FormValue("date_put_in_service"), r.FormValue("notes"))
	if err != nil {
		slog.Warn("failed to update equipment", "error", err, "equipment", id)
	} else {
		slog.Info("equipment updated", "user", claims.Username, "equipment", id)
	}
	http.Redirect(w, r, "/equipment/"+id, http.StatusSeeOther)
}

// EquipmentStatusSubmit handles POST /equipment/{type}/{num}/status.
func (s *Server) EquipmentStatusSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := webEquipmentID(r)
	if err != nil {
		http.Error(w, "invalid equipment id", http.StatusBadRequest)
		return
	}

	status := r.FormValue("status")
	reason := r.FormValue("reason")

	_, err = store.SetEquipmentStatus(r.Context(), s.DB, id, status, reason, claims.Username, s.AllowRedTagRelease)
	if err != nil {
		slog.Warn("status change rejected", "error", err, "equipment", id, "status", status)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("equipment status changed", "user", claims.Username, "equipment", id, "status", status)
	http.Redirect(w, r, "/equipment/"+id, http.StatusSeeOther)
}

// InspectionCreateSubmit handles POST /equipment/{type}/{num}/inspections.
func (s *Server) InspectionCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := webEquipmentID(r)
	if err != nil {
		http.Error(w, "invalid equipment id", http.StatusBadRequest)
		return
	}

	insp := &model.Inspection{
		EquipmentID:    id,
		InspectionDate: r.FormValue("inspection_date"),
		Result:         r.FormValue("result"),
		InspectorName:  r.FormValue("inspector_name"),
		Notes:          r.FormValue("notes"),
	}

	created, err := store.CreateInspection(r.Context(), s.DB, insp)
	if err != nil {
		slog.Warn("inspection rejected", "error", err, "equipment", id)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("inspection recorded", "user", claims.Username,
		"equipment", id, "result", created.Result, "inspector", created.InspectorName)
	http.Redirect(w, r, "/equipment/"+id, http.StatusSeeOther)
}

// EquipmentPhotoSubmit handles POST /equipment/{type}/{num}/photo.
func (s *Server) EquipmentPhotoSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := webEquipmentID(r)
	if err != nil {
		http.Error(w, "invalid equipment id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Validate format by sniffing bytes, downscale, compress.
	result, err := imaging.Process(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.SetEquipmentPhoto(r.Context(), s.DB, id, result.Data, result.MIME); err != nil {
		slog.Error("failed to save photo", "error", err)
		http.Error(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	slog.Info("equipment photo uploaded", "user", claims.Username, "equipment", id)
	http.Redirect(w, r, "/equipment/"+id, http.StatusSeeOther)
}

// EquipmentPhotoGet handles GET /equipment/{type}/{num}/photo (web route,
// cookie-authenticated).
func (s *Server) EquipmentPhotoGet(w http.ResponseWriter, r *http.Request) {
	id, err := webEquipmentID(r)
	if err != nil {
		http.Error(w, "invalid equipment id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetEquipmentPhoto(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}
