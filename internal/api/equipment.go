package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/imaging"
	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// EquipmentHandler handles equipment endpoints.
type EquipmentHandler struct {
	DB *sql.DB

	// AllowRedTagRelease lets manual status changes move red-tagged gear
	// back to ACTIVE. Off by default; a deployment switch.
	AllowRedTagRelease bool
}

// equipmentID reassembles the {type}/{num} path segments into an equipment
// id. Equipment ids embed a slash, so they span two route segments.
func equipmentID(r *http.Request) (string, bool) {
	id := r.PathValue("type") + "/" + r.PathValue("num")
	if _, _, err := model.ParseEquipmentID(id); err != nil {
		return "", false
	}
	return id, true
}

type createEquipmentRequest struct {
	TypeCode         string `json:"type_code"`
	Name             string `json:"name"`
	SerialNumber     string `json:"serial_number"`
	DateAdded        string `json:"date_added_to_inventory"`
	DatePutInService string `json:"date_put_in_service"`
	Notes            string `json:"notes"`

	// Quantity > 1 switches to a batch create; SerialNumbers then carries
	// the per-item serials (optional, positional).
	Quantity      int      `json:"quantity"`
	SerialNumbers []string `json:"serial_numbers"`
}

type updateEquipmentRequest struct {
	Name             string `json:"name"`
	SerialNumber     string `json:"serial_number"`
	DatePutInService string `json:"date_put_in_service"`
	Notes            string `json:"notes"`
}

type statusChangeRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// List handles GET /api/equipment with status, type, job, and q filters.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.EquipmentFilter{
		Status:   q.Get("status"),
		TypeCode: q.Get("type"),
		JobID:    q.Get("job"),
		Search:   q.Get("q"),
	}
	equipment, err := store.ListEquipment(r.Context(), h.DB, filter)
	if err != nil {
		storeError(w, err, "failed to list equipment")
		return
	}
	if equipment == nil {
		equipment = []model.Equipment{}
	}
	jsonResponse(w, http.StatusOK, equipment)
}

// Create handles POST /api/equipment: one piece by default, a per-item batch
// when quantity is set.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEquipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	base := &model.Equipment{
		TypeCode:             req.TypeCode,
		Name:                 req.Name,
		SerialNumber:         req.SerialNumber,
		DateAddedToInventory: req.DateAdded,
		DatePutInService:     req.DatePutInService,
		Notes:                req.Notes,
	}
	claims := GetClaims(r.Context())

	if req.Quantity > 1 {
		result, err := store.BatchCreateEquipment(r.Context(), h.DB, base, req.SerialNumbers, req.Quantity, claims.Username)
		if err != nil {
			storeError(w, err, "failed to create equipment batch")
			return
		}
		slog.Info("equipment batch created", "user", claims.Username, "type", req.TypeCode,
			"created", result.SuccessCount(), "failed", result.FailureCount())
		jsonResponse(w, http.StatusCreated, result)
		return
	}

	created, err := store.CreateEquipment(r.Context(), h.DB, base, claims.Username)
	if err != nil {
		storeError(w, err, "failed to create equipment")
		return
	}

	slog.Info("equipment created", "user", claims.Username, "equipment", created.EquipmentID)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/equipment/{type}/{num}: the record plus its
// inspections and status history.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	equipment, err := store.GetEquipment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get equipment")
		return
	}
	if equipment == nil {
		jsonError(w, http.StatusNotFound, "equipment not found")
		return
	}

	inspections, err := store.ListInspections(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get inspections")
		return
	}
	if inspections == nil {
		inspections = []model.Inspection{}
	}
	history, err := store.ListStatusChanges(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get status history")
		return
	}
	if history == nil {
		history = []model.StatusChange{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"equipment":      equipment,
		"inspections":    inspections,
		"status_history": history,
	})
}

// Update handles PUT /api/equipment/{type}/{num}: descriptive fields only;
// status moves through the status endpoint.
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	var req updateEquipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateEquipment(r.Context(), h.DB, id, req.Name, req.SerialNumber, req.DatePutInService, req.Notes); err != nil {
		storeError(w, err, "failed to update equipment")
		return
	}

	updated, _ := store.GetEquipment(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/equipment/{type}/{num}. Equipment with
// inspection history cannot be deleted.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	if err := store.DeleteEquipment(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete equipment")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("equipment deleted", "user", claims.Username, "equipment", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "equipment deleted"})
}

// SetStatus handles PUT /api/equipment/{type}/{num}/status: the manual
// transition path (ACTIVE, RED_TAGGED, DESTROYED).
func (h *EquipmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	var req statusChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	updated, err := store.SetEquipmentStatus(r.Context(), h.DB, id, req.Status, req.Reason, claims.Username, h.AllowRedTagRelease)
	if err != nil {
		storeError(w, err, "failed to change equipment status")
		return
	}

	slog.Info("equipment status changed", "user", claims.Username, "equipment", id, "status", req.Status)
	jsonResponse(w, http.StatusOK, updated)
}

// GetHistory handles GET /api/equipment/{type}/{num}/history.
func (h *EquipmentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	history, err := store.ListStatusChanges(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get status history")
		return
	}
	if history == nil {
		history = []model.StatusChange{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// UploadPhoto handles PUT /api/equipment/{type}/{num}/photo. The image is
// validated by sniffing, downscaled, and re-encoded before storage.
func (h *EquipmentHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	processed, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetEquipmentPhoto(r.Context(), h.DB, id, processed.Data, processed.MIME); err != nil {
		storeError(w, err, "failed to save photo")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/equipment/{type}/{num}/photo.
func (h *EquipmentHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	data, mime, err := store.GetEquipmentPhoto(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
