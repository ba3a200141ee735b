package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// InvoicesHandler handles invoice endpoints.
type InvoicesHandler struct {
	DB *sql.DB
}

// List handles GET /api/invoices, optionally filtered by ?job=.
func (h *InvoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := store.ListInvoices(r.Context(), h.DB, r.URL.Query().Get("job"))
	if err != nil {
		storeError(w, err, "failed to list invoices")
		return
	}
	if invoices == nil {
		invoices = []model.Invoice{}
	}
	jsonResponse(w, http.StatusOK, invoices)
}

// Create handles POST /api/invoices. Line items may be included; the number
// is assigned per job and the totals are computed server-side.
func (h *InvoicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Invoice
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := store.CreateInvoice(r.Context(), h.DB, &req)
	if err != nil {
		storeError(w, err, "failed to create invoice")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("invoice created", "user", claims.Username, "invoice", created.InvoiceNumber, "job", created.JobID)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/invoices/{id}, with line items.
func (h *InvoicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	invoice, err := store.GetInvoice(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get invoice")
		return
	}
	if invoice == nil {
		jsonError(w, http.StatusNotFound, "invoice not found")
		return
	}
	jsonResponse(w, http.StatusOK, invoice)
}

// Update handles PUT /api/invoices/{id}: header fields, status, and tax
// rate; totals recompute when the rate changes.
func (h *InvoicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	// Decode over the stored invoice so absent fields keep their values.
	invoice, err := store.GetInvoice(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get invoice")
		return
	}
	if invoice == nil {
		jsonError(w, http.StatusNotFound, "invoice not found")
		return
	}
	if err := decodeJSON(r, invoice); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	invoice.ID = id

	if err := store.UpdateInvoice(r.Context(), h.DB, invoice); err != nil {
		storeError(w, err, "failed to update invoice")
		return
	}

	updated, _ := store.GetInvoice(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// AddLine handles POST /api/invoices/{id}/lines.
func (h *InvoicesHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	var req model.InvoiceLineItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.AddInvoiceLine(r.Context(), h.DB, id, &req); err != nil {
		storeError(w, err, "failed to add invoice line")
		return
	}

	updated, _ := store.GetInvoice(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusCreated, updated)
}

// DeleteLine handles DELETE /api/invoices/{id}/lines/{lineID}.
func (h *InvoicesHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	lineID, err := strconv.ParseInt(r.PathValue("lineID"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid line id")
		return
	}

	if err := store.DeleteInvoiceLine(r.Context(), h.DB, id, lineID); err != nil {
		storeError(w, err, "failed to delete invoice line")
		return
	}

	updated, _ := store.GetInvoice(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}
