package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// ReportsPage handles GET /reports: the three compliance reports side by
// side, as of today or an ?asof=YYYY-MM-DD override.
func (s *Server) ReportsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	asOf := model.DateOnly(time.Now())
	if v := r.URL.Query().Get("asof"); v != "" {
		if d, err := model.ParseDate(v); err == nil {
			asOf = d
		}
	}

	overdue, err := store.OverdueInspections(r.Context(), s.DB, asOf)
	if err != nil {
		slog.Error("failed to get overdue inspections", "error", err)
	}
	redTags, err := store.RedTagReport(r.Context(), s.DB, asOf)
	if err != nil {
		slog.Error("failed to get red tag report", "error", err)
	}
	expiring, err := store.ExpiringSoftGoods(r.Context(), s.DB, asOf)
	if err != nil {
		slog.Error("failed to get expiring soft goods", "error", err)
	}
	summary, err := store.StatusSummary(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to get status summary", "error", err)
	}

	s.Templates.Render(w, "reports.html", &struct {
		PageData
		AsOf     string
		Overdue  []model.OverdueInspection
		RedTags  []model.RedTagCountdown
		Expiring []model.ExpiringSoftGood
		Summary  map[string]int
	}{
		PageData: PageData{Title: "Compliance Reports", User: claims, Token: GetWebToken(r.Context())},
		AsOf:     model.FormatDate(asOf),
		Overdue:  overdue,
		RedTags:  redTags,
		Expiring: expiring,
		Summary:  summary,
	})
}
