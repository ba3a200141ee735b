package web

import (
	"log/slog"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// JobsPage handles GET /jobs.
func (s *Server) JobsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	jobs, err := store.ListJobs(r.Context(), s.DB, r.URL.Query().Get("status"))
	if err != nil {
		slog.Error("failed to list jobs", "error", err)
	}

	s.Templates.Render(w, "jobs.html", &struct {
		PageData
		Jobs         []model.Job
		StatusFilter string
	}{
		PageData:     PageData{Title: "Jobs", User: claims, Token: GetWebToken(r.Context())},
		Jobs:         jobs,
		StatusFilter: r.URL.Query().Get("status"),
	})
}

// JobCreateSubmit handles POST /jobs.
func (s *Server) JobCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	job := &model.Job{
		CustomerName:       r.FormValue("customer_name"),
		JobTitle:           r.FormValue("job_title"),
		Description:        r.FormValue("description"),
		LocationCity:       r.FormValue("location_city"),
		LocationState:      r.FormValue("location_state"),
		ProjectedStartDate: r.FormValue("projected_start_date"),
		ProjectedEndDate:   r.FormValue("projected_end_date"),
		Status:             r.FormValue("status"),
	}

	created, err := store.CreateJob(r.Context(), s.DB, job)
	if err != nil {
		slog.Warn("job creation failed", "error", err, "user", claims.Username)
		http.Redirect(w, r, "/jobs", http.StatusSeeOther)
		return
	}

	slog.Info("job created", "user", claims.Username, "job", created.JobID, "customer", created.CustomerName)
	http.Redirect(w, r, "/jobs/"+created.JobID, http.StatusSeeOther)
}

// JobDetailPage handles GET /jobs/{id}.
func (s *Server) JobDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	job, err := store.GetJob(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get job", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	billing, err := store.GetJobBilling(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get job billing", "error", err)
	}
	assigned, err := store.ListEquipment(r.Context(), s.DB, store.EquipmentFilter{JobID: id})
	if err != nil {
		slog.Error("failed to list assigned equipment", "error", err)
	}
	available, err := store.ListEquipment(r.Context(), s.DB, store.EquipmentFilter{Status: model.StatusActive})
	if err != nil {
		slog.Error("failed to list available equipment", "error", err)
	}
	invoices, err := store.ListInvoices(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list job invoices", "error", err)
	}
	stats, err := store.GetJobStats(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get job stats", "error", err)
	}

	s.Templates.Render(w, "job_detail.html", &struct {
		PageData
		Job       *model.Job
		Billing   *model.JobBilling
		Assigned  []model.Equipment
		Available []model.Equipment
		Invoices  []model.Invoice
		Stats     *model.JobStats
	}{
		PageData:  PageData{Title: job.JobID + " " + job.CustomerName, User: claims, Token: GetWebToken(r.Context())},
		Job:       job,
		Billing:   billing,
		Assigned:  assigned,
		Available: available,
		Invoices:  invoices,
		Stats:     stats,
	})
}

// JobUpdateSubmit handles POST /jobs/{id}.
func (s *Server) JobUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id := r.PathValue("id")
	job, err := store.GetJob(r.Context(), s.DB, id)
	if err != nil || job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	job.CustomerName = r.FormValue("customer_name")
	job.JobTitle = r.FormValue("job_title")
	job.Description = r.FormValue("description")
	job.LocationCity = r.FormValue("location_city")
	job.LocationState = r.FormValue("location_state")
	job.ProjectedStartDate = r.FormValue("projected_start_date")
	job.ProjectedEndDate = r.FormValue("projected_end_date")
	job.Status = r.FormValue("status")

	if err := store.UpdateJob(r.Context(), s.DB, job); err != nil {
		slog.Warn("job update rejected", "error", err, "job", id)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("job updated", "user", claims.Username, "job", id, "status", job.Status)
	http.Redirect(w, r, "/jobs/"+id, http.StatusSeeOther)
}

// JobBillingSubmit handles POST /jobs/{id}/billing.
func (s *Server) JobBillingSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id := r.PathValue("id")
	billing, err := store.GetJobBilling(r.Context(), s.DB, id)
	if err != nil || billing == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	billing.BidAmount = r.FormValue("bid_amount")
	billing.ActualCost = r.FormValue("actual_cost")
	billing.PaymentStatus = r.FormValue("payment_status")
	billing.InvoiceDate = r.FormValue("invoice_date")
	billing.Notes = r.FormValue("notes")

	if err := store.UpdateJobBilling(r.Context(), s.DB, billing); err != nil {
		slog.Warn("billing update rejected", "error", err, "job", id)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("job billing updated", "user", claims.Username, "job", id, "payment_status", billing.PaymentStatus)
	http.Redirect(w, r, "/jobs/"+id, http.StatusSeeOther)
}

// JobAssignSubmit handles POST /jobs/{id}/assign. The form posts one or more
// equipment_id values; each is assigned independently.
func (s *Server) JobAssignSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ids := r.PostForm["equipment_id"]
	if len(ids) == 0 {
		http.Redirect(w, r, "/jobs/"+id, http.StatusSeeOther)
		return
	}

	result, err := store.AssignEquipmentToJob(r.Context(), s.DB, id, ids, claims.Username)
	if err != nil {
		slog.Warn("assignment failed", "error", err, "job", id)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("equipment assigned", "user", claims.Username, "job", id,
		"assigned", result.SuccessCount(), "rejected", result.FailureCount())
	http.Redirect(w, r, "/jobs/"+id, http.StatusSeeOther)
}

// JobReturnSubmit handles POST /jobs/{id}/return.
func (s *Server) JobReturnSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ids := r.PostForm["equipment_id"]
	if len(ids) == 0 {
		http.Redirect(w, r, "/jobs/"+id, http.StatusSeeOther)
		return
	}

	result, err := store.ReturnEquipmentFromJob(r.Context(), s.DB, id, ids, claims.Username)
	if err != nil {
		slog.Warn("return failed", "error", err, "job", id)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("equipment returned", "user", claims.Username, "job", id,
		"returned", result.SuccessCount(), "rejected", result.FailureCount())
	http.Redirect(w, r, "/jobs/"+id, http.StatusSeeOther)
}
