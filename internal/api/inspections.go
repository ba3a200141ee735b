package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// InspectionsHandler handles inspection endpoints.
type InspectionsHandler struct {
	DB *sql.DB
}

type createInspectionRequest struct {
	InspectionDate string `json:"inspection_date"`
	Result         string `json:"result"`
	InspectorName  string `json:"inspector_name"`
	Notes          string `json:"notes"`
}

// Create handles POST /api/equipment/{type}/{num}/inspections. A FAIL result
// red-tags the equipment in the same transaction.
func (h *InspectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	var req createInspectionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	insp, err := store.CreateInspection(r.Context(), h.DB, &model.Inspection{
		EquipmentID:    id,
		InspectionDate: req.InspectionDate,
		Result:         req.Result,
		InspectorName:  req.InspectorName,
		Notes:          req.Notes,
	})
	if err != nil {
		storeError(w, err, "failed to record inspection")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inspection recorded", "user", claims.Username, "equipment", id, "result", insp.Result)
	jsonResponse(w, http.StatusCreated, insp)
}

// List handles GET /api/equipment/{type}/{num}/inspections, newest first.
func (h *InspectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := equipmentID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	inspections, err := store.ListInspections(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to list inspections")
		return
	}
	if inspections == nil {
		inspections = []model.Inspection{}
	}
	jsonResponse(w, http.StatusOK, inspections)
}
