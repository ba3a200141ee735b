package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// validDecimal checks that s parses as a decimal amount.
func validDecimal(s string) error {
	_, err := decimal.NewFromString(s)
	return err
}

// CreateInvoice creates an invoice for a job. The invoice number is
// INV-<job>-<n>, sequential per job, generated inside the transaction with
// the same collision-retry discipline as equipment ids. Any initial line
// items are inserted and the totals computed before commit.
func CreateInvoice(ctx context.Context, db *sql.DB, inv *model.Invoice) (*model.Invoice, error) {
	var problems []string
	if !model.ValidJobID(inv.JobID) {
		problems = append(problems, "job id required")
	}
	if inv.TaxRate == "" {
		inv.TaxRate = "0"
	}
	if err := validDecimal(inv.TaxRate); err != nil {
		problems = append(problems, "tax rate must be a decimal percentage")
	}
	if inv.Status == "" {
		inv.Status = model.InvoiceDraft
	}
	if !model.ValidInvoiceStatus(inv.Status) {
		problems = append(problems, "invoice status must be DRAFT, SENT, or PAID")
	}
	if inv.InvoiceDate == "" {
		inv.InvoiceDate = model.FormatDate(time.Now())
	} else if _, err := model.ParseDate(inv.InvoiceDate); err != nil {
		problems = append(problems, "invoice date must be YYYY-MM-DD")
	}
	for i := range inv.LineItems {
		if err := inv.LineItems[i].Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", i+1, err))
		}
	}
	if len(problems) > 0 {
		return nil, model.NewValidationError(problems...)
	}

	job, err := GetJob(ctx, db, inv.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", inv.JobID, model.ErrNotFound)
	}

	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := createInvoiceOnce(ctx, db, inv)
		if err == nil {
			return GetInvoice(ctx, db, id)
		}
		if !isConstraint(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, wrapDB("creating invoice", lastErr)
}

func createInvoiceOnce(ctx context.Context, db *sql.DB, inv *model.Invoice) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices WHERE job_id = ?`, inv.JobID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting job invoices: %w", err)
	}
	number := fmt.Sprintf("INV-%s-%d", inv.JobID, count+1)

	totals, err := model.ComputeInvoiceTotals(inv.LineItems, inv.TaxRate)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO invoices (invoice_number, job_id, equipment_id, invoice_date, status,
		                       issued_to_name, issued_to_company, issued_to_address,
		                       pay_to_name, pay_to_company, pay_to_address,
		                       tax_rate, subtotal, tax_amount, total_amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		number, inv.JobID, nullIfEmpty(inv.EquipmentID), inv.InvoiceDate, inv.Status,
		nullIfEmpty(inv.IssuedToName), nullIfEmpty(inv.IssuedToCompany), nullIfEmpty(inv.IssuedToAddress),
		nullIfEmpty(inv.PayToName), nullIfEmpty(inv.PayToCompany), nullIfEmpty(inv.PayToAddress),
		inv.TaxRate, totals.Subtotal.StringFixed(2), totals.TaxAmount.StringFixed(2), totals.TotalAmount.StringFixed(2),
	)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting invoice id: %w", err)
	}

	for i, li := range inv.LineItems {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO invoice_line_items (invoice_id, description, unit_price, quantity, position)
			 VALUES (?, ?, ?, ?, ?)`,
			id, li.Description, li.UnitPrice, li.Quantity, i+1,
		); err != nil {
			return 0, fmt.Errorf("inserting line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing invoice: %w", err)
	}
	return id, nil
}

const invoiceColumns = `id, invoice_number, job_id, equipment_id, invoice_date, status,
	issued_to_name, issued_to_company, issued_to_address,
	pay_to_name, pay_to_company, pay_to_address,
	tax_rate, subtotal, tax_amount, total_amount, created_at, updated_at`

// GetInvoice returns an invoice with its line items, or nil if none exists.
func GetInvoice(ctx context.Context, db *sql.DB, id int64) (*model.Invoice, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id,
	)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	lines, err := listLineItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = lines
	return inv, nil
}

// ListInvoices returns invoices, optionally for one job, newest first.
// Line items are not populated on list reads.
func ListInvoices(ctx context.Context, db *sql.DB, jobID string) ([]model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var args []any
	if jobID != "" {
		query += ` WHERE job_id = ?`
		args = append(args, jobID)
	}
	query += ` ORDER BY id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// UpdateInvoice updates an invoice's header fields, status, and tax rate,
// recomputing the totals when the rate changes.
func UpdateInvoice(ctx context.Context, db *sql.DB, inv *model.Invoice) error {
	var problems []string
	if !model.ValidInvoiceStatus(inv.Status) {
		problems = append(problems, "invoice status must be DRAFT, SENT, or PAID")
	}
	if inv.TaxRate == "" {
		inv.TaxRate = "0"
	}
	if err := validDecimal(inv.TaxRate); err != nil {
		problems = append(problems, "tax rate must be a decimal percentage")
	}
	if inv.InvoiceDate != "" {
		if _, err := model.ParseDate(inv.InvoiceDate); err != nil {
			problems = append(problems, "invoice date must be YYYY-MM-DD")
		}
	}
	if len(problems) > 0 {
		return model.NewValidationError(problems...)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE invoices
		 SET invoice_date = ?, status = ?,
		     issued_to_name = ?, issued_to_company = ?, issued_to_address = ?,
		     pay_to_name = ?, pay_to_company = ?, pay_to_address = ?,
		     tax_rate = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		inv.InvoiceDate, inv.Status,
		nullIfEmpty(inv.IssuedToName), nullIfEmpty(inv.IssuedToCompany), nullIfEmpty(inv.IssuedToAddress),
		nullIfEmpty(inv.PayToName), nullIfEmpty(inv.PayToCompany), nullIfEmpty(inv.PayToAddress),
		inv.TaxRate, inv.ID,
	)
	if err != nil {
		return wrapDB("updating invoice", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating invoice %d: %w", inv.ID, model.ErrNotFound)
	}

	if err := recomputeInvoiceTotals(ctx, tx, inv.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing invoice update: %w", err)
	}
	return nil
}

// AddInvoiceLine appends a line item and recomputes the invoice totals in
// the same transaction.
func AddInvoiceLine(ctx context.Context, db *sql.DB, invoiceID int64, li *model.InvoiceLineItem) error {
	if err := li.Validate(); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM invoice_line_items WHERE invoice_id = ?`, invoiceID,
	).Scan(&position); err != nil {
		return fmt.Errorf("getting line position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoice_line_items (invoice_id, description, unit_price, quantity, position)
		 VALUES (?, ?, ?, ?, ?)`,
		invoiceID, li.Description, li.UnitPrice, li.Quantity, position,
	)
	if err != nil {
		return wrapDB("adding invoice line", err)
	}

	if err := recomputeInvoiceTotals(ctx, tx, invoiceID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing invoice line: %w", err)
	}
	return nil
}

// DeleteInvoiceLine removes a line item and recomputes the invoice totals in
// the same transaction.
func DeleteInvoiceLine(ctx context.Context, db *sql.DB, invoiceID, lineID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM invoice_line_items WHERE id = ? AND invoice_id = ?`, lineID, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("deleting invoice line: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("invoice %d line %d: %w", invoiceID, lineID, model.ErrNotFound)
	}

	if err := recomputeInvoiceTotals(ctx, tx, invoiceID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing line delete: %w", err)
	}
	return nil
}

// recomputeInvoiceTotals rereads an invoice's lines and tax rate inside tx
// and stores the derived subtotal, tax, and total. Totals are deterministic
// from the lines: they are never edited directly.
func recomputeInvoiceTotals(ctx context.Context, tx *sql.Tx, invoiceID int64) error {
	var taxRate string
	err := tx.QueryRowContext(ctx,
		`SELECT tax_rate FROM invoices WHERE id = ?`, invoiceID,
	).Scan(&taxRate)
	if err == sql.ErrNoRows {
		return fmt.Errorf("invoice %d: %w", invoiceID, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading invoice tax rate: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT unit_price, quantity FROM invoice_line_items WHERE invoice_id = ?`, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("reading invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []model.InvoiceLineItem
	for rows.Next() {
		var li model.InvoiceLineItem
		if err := rows.Scan(&li.UnitPrice, &li.Quantity); err != nil {
			return fmt.Errorf("scanning invoice line: %w", err)
		}
		lines = append(lines, li)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading invoice lines: %w", err)
	}

	totals, err := model.ComputeInvoiceTotals(lines, taxRate)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE invoices SET subtotal = ?, tax_amount = ?, total_amount = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		totals.Subtotal.StringFixed(2), totals.TaxAmount.StringFixed(2), totals.TotalAmount.StringFixed(2), invoiceID,
	)
	if err != nil {
		return fmt.Errorf("storing invoice totals: %w", err)
	}
	return nil
}

func listLineItems(ctx context.Context, db *sql.DB, invoiceID int64) ([]model.InvoiceLineItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, invoice_id, description, unit_price, quantity, position
		 FROM invoice_line_items WHERE invoice_id = ? ORDER BY position, id`, invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []model.InvoiceLineItem
	for rows.Next() {
		var li model.InvoiceLineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.Description, &li.UnitPrice, &li.Quantity, &li.Position); err != nil {
			return nil, fmt.Errorf("scanning invoice line: %w", err)
		}
		lines = append(lines, li)
	}
	return lines, rows.Err()
}

func scanInvoice(row rowScanner) (*model.Invoice, error) {
	inv := &model.Invoice{}
	var equipmentID, issName, issCompany, issAddr, payName, payCompany, payAddr sql.NullString
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.JobID, &equipmentID, &inv.InvoiceDate, &inv.Status,
		&issName, &issCompany, &issAddr, &payName, &payCompany, &payAddr,
		&inv.TaxRate, &inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.EquipmentID = equipmentID.String
	inv.IssuedToName = issName.String
	inv.IssuedToCompany = issCompany.String
	inv.IssuedToAddress = issAddr.String
	inv.PayToName = payName.String
	inv.PayToCompany = payCompany.String
	inv.PayToAddress = payAddr.String
	return inv, nil
}
