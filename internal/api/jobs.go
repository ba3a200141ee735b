package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// JobsHandler handles job and billing endpoints.
type JobsHandler struct {
	DB *sql.DB
}

type batchEquipmentRequest struct {
	EquipmentIDs []string `json:"equipment_ids"`
}

// List handles GET /api/jobs, optionally filtered by ?status=.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs(r.Context(), h.DB, r.URL.Query().Get("status"))
	if err != nil {
		storeError(w, err, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	jsonResponse(w, http.StatusOK, jobs)
}

// Create handles POST /api/jobs.
func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Job
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := store.CreateJob(r.Context(), h.DB, &req)
	if err != nil {
		storeError(w, err, "failed to create job")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("job created", "user", claims.Username, "job", created.JobID, "customer", created.CustomerName)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/jobs/{id}: the job plus billing, assigned equipment,
// and assignment stats.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := store.GetJob(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get job")
		return
	}
	if job == nil {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}

	billing, err := store.GetJobBilling(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get job billing")
		return
	}
	equipment, err := store.ListEquipment(r.Context(), h.DB, store.EquipmentFilter{JobID: id})
	if err != nil {
		storeError(w, err, "failed to list assigned equipment")
		return
	}
	if equipment == nil {
		equipment = []model.Equipment{}
	}
	stats, err := store.GetJobStats(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get job stats")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"job":       job,
		"billing":   billing,
		"equipment": equipment,
		"stats":     stats,
	})
}

// Update handles PUT /api/jobs/{id}.
func (h *JobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Decode over the stored job so absent fields keep their values.
	job, err := store.GetJob(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get job")
		return
	}
	if job == nil {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}
	if err := decodeJSON(r, job); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	job.JobID = id

	if err := store.UpdateJob(r.Context(), h.DB, job); err != nil {
		storeError(w, err, "failed to update job")
		return
	}

	updated, _ := store.GetJob(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// UpdateBilling handles PUT /api/jobs/{id}/billing.
func (h *JobsHandler) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	billing, err := store.GetJobBilling(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get job billing")
		return
	}
	if billing == nil {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}
	if err := decodeJSON(r, billing); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	billing.JobID = id

	if err := store.UpdateJobBilling(r.Context(), h.DB, billing); err != nil {
		storeError(w, err, "failed to update job billing")
		return
	}

	updated, _ := store.GetJobBilling(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// Assign handles POST /api/jobs/{id}/assign: a per-item batch moving
// equipment into the field.
func (h *JobsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req batchEquipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.EquipmentIDs) == 0 {
		jsonError(w, http.StatusBadRequest, "equipment ids required")
		return
	}

	jobID := r.PathValue("id")
	claims := GetClaims(r.Context())
	result, err := store.AssignEquipmentToJob(r.Context(), h.DB, jobID, req.EquipmentIDs, claims.Username)
	if err != nil {
		storeError(w, err, "failed to assign equipment")
		return
	}

	slog.Info("equipment assigned", "user", claims.Username, "job", jobID,
		"assigned", result.SuccessCount(), "rejected", result.FailureCount())
	jsonResponse(w, http.StatusOK, result)
}

// Return handles POST /api/jobs/{id}/return: a per-item batch bringing
// equipment back from the field.
func (h *JobsHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req batchEquipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.EquipmentIDs) == 0 {
		jsonError(w, http.StatusBadRequest, "equipment ids required")
		return
	}

	jobID := r.PathValue("id")
	claims := GetClaims(r.Context())
	result, err := store.ReturnEquipmentFromJob(r.Context(), h.DB, jobID, req.EquipmentIDs, claims.Username)
	if err != nil {
		storeError(w, err, "failed to return equipment")
		return
	}

	slog.Info("equipment returned", "user", claims.Username, "job", jobID,
		"returned", result.SuccessCount(), "rejected", result.FailureCount())
	jsonResponse(w, http.StatusOK, result)
}
