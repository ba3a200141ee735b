package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/highpoint-ops/gearlog/internal/export"
	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// ReportsHandler serves the compliance reports, as JSON by default and as
// XLSX downloads with ?format=xlsx.
type ReportsHandler struct {
	DB *sql.DB
}

// reportDate resolves the effective "today" for a report request: ?asof= if
// given, otherwise the current date.
func reportDate(r *http.Request) (time.Time, error) {
	if asof := r.URL.Query().Get("asof"); asof != "" {
		return model.ParseDate(asof)
	}
	return model.DateOnly(time.Now()), nil
}

func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx"
}

func writeWorkbook(w http.ResponseWriter, name string, wb *export.Workbook) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.xlsx", name, model.FormatDate(time.Now())))
	if err := wb.Write(w); err != nil {
		slog.Error("failed to write workbook", "report", name, "error", err)
	}
}

// OverdueInspections handles GET /api/reports/overdue-inspections.
func (h *ReportsHandler) OverdueInspections(w http.ResponseWriter, r *http.Request) {
	today, err := reportDate(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "asof must be YYYY-MM-DD")
		return
	}

	rows, err := store.OverdueInspections(r.Context(), h.DB, today)
	if err != nil {
		storeError(w, err, "failed to build overdue inspections report")
		return
	}
	if rows == nil {
		rows = []model.OverdueInspection{}
	}

	if wantsXLSX(r) {
		wb := export.New()
		if err := wb.AddOverdueSheet(rows); err != nil {
			storeError(w, err, "failed to build report workbook")
			return
		}
		writeWorkbook(w, "overdue_inspections", wb)
		return
	}
	jsonResponse(w, http.StatusOK, rows)
}

// RedTag handles GET /api/reports/red-tag.
func (h *ReportsHandler) RedTag(w http.ResponseWriter, r *http.Request) {
	today, err := reportDate(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "asof must be YYYY-MM-DD")
		return
	}

	rows, err := store.RedTagReport(r.Context(), h.DB, today)
	if err != nil {
		storeError(w, err, "failed to build red tag report")
		return
	}
	if rows == nil {
		rows = []model.RedTagCountdown{}
	}

	if wantsXLSX(r) {
		wb := export.New()
		if err := wb.AddRedTagSheet(rows); err != nil {
			storeError(w, err, "failed to build report workbook")
			return
		}
		writeWorkbook(w, "red_tag", wb)
		return
	}
	jsonResponse(w, http.StatusOK, rows)
}

// ExpiringSoftGoods handles GET /api/reports/expiring-soft-goods.
func (h *ReportsHandler) ExpiringSoftGoods(w http.ResponseWriter, r *http.Request) {
	today, err := reportDate(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "asof must be YYYY-MM-DD")
		return
	}

	rows, err := store.ExpiringSoftGoods(r.Context(), h.DB, today)
	if err != nil {
		storeError(w, err, "failed to build expiring soft goods report")
		return
	}
	if rows == nil {
		rows = []model.ExpiringSoftGood{}
	}

	if wantsXLSX(r) {
		wb := export.New()
		if err := wb.AddExpirySheet(rows); err != nil {
			storeError(w, err, "failed to build report workbook")
			return
		}
		writeWorkbook(w, "expiring_soft_goods", wb)
		return
	}
	jsonResponse(w, http.StatusOK, rows)
}

// Summary handles GET /api/reports/summary: equipment counts by status.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := store.StatusSummary(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to build status summary")
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}
