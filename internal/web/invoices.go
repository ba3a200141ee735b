package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

// InvoicesPage handles GET /invoices: the list plus the create form, with
// the pay-to block pre-filled from settings.
func (s *Server) InvoicesPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	invoices, err := store.ListInvoices(r.Context(), s.DB, r.URL.Query().Get("job"))
	if err != nil {
		slog.Error("failed to list invoices", "error", err)
	}
	jobs, err := store.ListJobs(r.Context(), s.DB, "")
	if err != nil {
		slog.Error("failed to list jobs for invoice form", "error", err)
	}

	payToName, _ := store.GetSetting(r.Context(), s.DB, store.SettingPayToName)
	payToCompany, _ := store.GetSetting(r.Context(), s.DB, store.SettingPayToCompany)
	payToAddress, _ := store.GetSetting(r.Context(), s.DB, store.SettingPayToAddress)
	taxRate, _ := store.GetSetting(r.Context(), s.DB, store.SettingTaxRate)

	s.Templates.Render(w, "invoices.html", &struct {
		PageData
		Invoices       []model.Invoice
		Jobs           []model.Job
		PayToName      string
		PayToCompany   string
		PayToAddress   string
		DefaultTaxRate string
	}{
		PageData:       PageData{Title: "Invoices", User: claims, Token: GetWebToken(r.Context())},
		Invoices:       invoices,
		Jobs:           jobs,
		PayToName:      payToName,
		PayToCompany:   payToCompany,
		PayToAddress:   payToAddress,
		DefaultTaxRate: taxRate,
	})
}

// InvoiceCreateSubmit handles POST /invoices.
func (s *Server) InvoiceCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	inv := &model.Invoice{
		JobID:           r.FormValue("job_id"),
		EquipmentID:     r.FormValue("equipment_id"),
		InvoiceDate:     r.FormValue("invoice_date"),
		IssuedToName:    r.FormValue("issued_to_name"),
		IssuedToCompany: r.FormValue("issued_to_company"),
		IssuedToAddress: r.FormValue("issued_to_address"),
		PayToName:       r.FormValue("pay_to_name"),
		PayToCompany:    r.FormValue("pay_to_company"),
		PayToAddress:    r.FormValue("pay_to_address"),
		TaxRate:         r.FormValue("tax_rate"),
	}

	created, err := store.CreateInvoice(r.Context(), s.DB, inv)
	if err != nil {
		slog.Warn("invoice creation failed", "error", err, "user", claims.Username)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("invoice created", "user", claims.Username, "invoice", created.InvoiceNumber, "job", created.JobID)
	http.Redirect(w, r, "/invoices/"+strconv.FormatInt(created.ID, 10), http.StatusSeeOther)
}

// InvoiceDetailPage handles GET /invoices/{id}.
func (s *Server) InvoiceDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid invoice id", http.StatusBadRequest)
		return
	}

	invoice, err := store.GetInvoice(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get invoice", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if invoice == nil {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}

	s.Templates.Render(w, "invoice_detail.html", &struct {
		PageData
		Invoice *model.Invoice
	}{
		PageData: PageData{Title: "Invoice " + invoice.InvoiceNumber, User: claims, Token: GetWebToken(r.Context())},
		Invoice:  invoice,
	})
}

// InvoiceUpdateSubmit handles POST /invoices/{id}: header fields, status,
// and tax rate.
func (s *Server) InvoiceUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid invoice id", http.StatusBadRequest)
		return
	}

	invoice, err := store.GetInvoice(r.Context(), s.DB, id)
	if err != nil || invoice == nil {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}

	invoice.InvoiceDate = r.FormValue("invoice_date")
	invoice.Status = r.FormValue("status")
	invoice.IssuedToName = r.FormValue("issued_to_name")
	invoice.IssuedToCompany = r.FormValue("issued_to_company")
	invoice.IssuedToAddress = r.FormValue("issued_to_address")
	invoice.PayToName = r.FormValue("pay_to_name")
	invoice.PayToCompany = r.FormValue("pay_to_company")
	invoice.PayToAddress = r.FormValue("pay_to_address")
	invoice.TaxRate = r.FormValue("tax_rate")

	if err := store.UpdateInvoice(r.Context(), s.DB, invoice); err != nil {
		slog.Warn("invoice update rejected", "error", err, "invoice", id)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("invoice updated", "user", claims.Username, "invoice", invoice.InvoiceNumber, "status", invoice.Status)
	http.Redirect(w, r, "/invoices/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// InvoiceLineAddSubmit handles POST /invoices/{id}/lines.
func (s *Server) InvoiceLineAddSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid invoice id", http.StatusBadRequest)
		return
	}

	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	line := &model.InvoiceLineItem{
		Description: r.FormValue("description"),
		UnitPrice:   r.FormValue("unit_price"),
		Quantity:    quantity,
	}

	if err := store.AddInvoiceLine(r.Context(), s.DB, id, line); err != nil {
		slog.Warn("invoice line rejected", "error", err, "invoice", id)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("invoice line added", "user", claims.Username, "invoice", id, "description", line.Description)
	http.Redirect(w, r, "/invoices/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// InvoiceLineDeleteSubmit handles POST /invoices/{id}/lines/{lineID}/delete.
func (s *Server) InvoiceLineDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid invoice id", http.StatusBadRequest)
		return
	}
	lineID, err := strconv.ParseInt(r.PathValue("lineID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid line id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteInvoiceLine(r.Context(), s.DB, id, lineID); err != nil {
		slog.Warn("invoice line delete rejected", "error", err, "invoice", id, "line", lineID)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("invoice line removed", "user", claims.Username, "invoice", id, "line", lineID)
	http.Redirect(w, r, "/invoices/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}
