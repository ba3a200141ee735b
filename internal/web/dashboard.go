package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// Dashboard handles GET /: status summary, compliance warnings, and the
// equipment list filtered by the query parameters.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	today := model.DateOnly(time.Now())

	summary, err := store.StatusSummary(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to get status summary", "error", err)
	}
	overdue, err := store.OverdueInspections(r.Context(), s.DB, today)
	if err != nil {
		slog.Error("failed to get overdue inspections", "error", err)
	}
	redTags, err := store.RedTagReport(r.Context(), s.DB, today)
	if err != nil {
		slog.Error("failed to get red tag report", "error", err)
	}
	expiring, err := store.ExpiringSoftGoods(r.Context(), s.DB, today)
	if err != nil {
		slog.Error("failed to get expiring soft goods", "error", err)
	}

	q := r.URL.Query()
	filter := store.EquipmentFilter{
		Status:   q.Get("status"),
		TypeCode: q.Get("type"),
		Search:   q.Get("q"),
	}
	equipment, err := store.ListEquipment(r.Context(), s.DB, filter)
	if err != nil {
		slog.Error("failed to list equipment for dashboard", "error", err)
	}
	types, err := store.ListEquipmentTypes(r.Context(), s.DB, true)
	if err != nil {
		slog.Error("failed to list equipment types", "error", err)
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Summary       map[string]int
		OverdueCount  int
		RedTagCount   int
		ExpiringCount int
		Equipment     []model.Equipment
		Types         []model.EquipmentType
		Filter        store.EquipmentFilter
	}{
		PageData:      PageData{Title: "Dashboard", User: claims, Token: GetWebToken(r.Context())},
		Summary:       summary,
		OverdueCount:  len(overdue),
		RedTagCount:   len(redTags),
		ExpiringCount: len(expiring),
		Equipment:     equipment,
		Types:         types,
		Filter:        filter,
	})
}
