package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// TypesHandler handles equipment type endpoints.
type TypesHandler struct {
	DB *sql.DB
}

// List handles GET /api/types. ?all=true includes deactivated types.
func (h *TypesHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	types, err := store.ListEquipmentTypes(r.Context(), h.DB, activeOnly)
	if err != nil {
		storeError(w, err, "failed to list equipment types")
		return
	}
	if types == nil {
		types = []model.EquipmentType{}
	}
	jsonResponse(w, http.StatusOK, types)
}

// Create handles POST /api/types.
func (h *TypesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.EquipmentType
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := store.CreateEquipmentType(r.Context(), h.DB, &req)
	if err != nil {
		storeError(w, err, "failed to create equipment type")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("equipment type created", "user", claims.Username, "type", created.TypeCode)
	jsonResponse(w, http.StatusCreated, created)
}

// Update handles PUT /api/types/{code}.
func (h *TypesHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	// Decode over the stored type so absent fields keep their values.
	et, err := store.GetEquipmentType(r.Context(), h.DB, code)
	if err != nil {
		storeError(w, err, "failed to get equipment type")
		return
	}
	if et == nil {
		jsonError(w, http.StatusNotFound, "equipment type not found")
		return
	}
	if err := decodeJSON(r, et); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	et.TypeCode = code

	if err := store.UpdateEquipmentType(r.Context(), h.DB, et); err != nil {
		storeError(w, err, "failed to update equipment type")
		return
	}

	updated, _ := store.GetEquipmentType(r.Context(), h.DB, code)
	jsonResponse(w, http.StatusOK, updated)
}
