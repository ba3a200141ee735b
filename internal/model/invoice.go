package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice bills a job, optionally tied to one piece of equipment. Totals are
// derived from the line items and recomputed whenever a line changes; they
// are stored as fixed two-decimal strings and never pass through floats.
type Invoice struct {
	ID              int64  `json:"id"`
	InvoiceNumber   string `json:"invoice_number"`
	JobID           string `json:"job_id"`
	EquipmentID     string `json:"equipment_id,omitempty"`
	InvoiceDate     string `json:"invoice_date"`
	Status          string `json:"status"`
	IssuedToName    string `json:"issued_to_name,omitempty"`
	IssuedToCompany string `json:"issued_to_company,omitempty"`
	IssuedToAddress string `json:"issued_to_address,omitempty"`
	PayToName       string `json:"pay_to_name,omitempty"`
	PayToCompany    string `json:"pay_to_company,omitempty"`
	PayToAddress    string `json:"pay_to_address,omitempty"`
	TaxRate         string `json:"tax_rate"`
	Subtotal        string `json:"subtotal"`
	TaxAmount       string `json:"tax_amount"`
	TotalAmount     string `json:"total_amount"`

	// Populated on detail reads.
	LineItems []InvoiceLineItem `json:"line_items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Invoice statuses.
const (
	InvoiceDraft = "DRAFT"
	InvoiceSent  = "SENT"
	InvoicePaid  = "PAID"
)

// ValidInvoiceStatus reports whether s is one of the invoice statuses.
func ValidInvoiceStatus(s string) bool {
	return s == InvoiceDraft || s == InvoiceSent || s == InvoicePaid
}

// InvoiceLineItem is one billed line: description, unit price, quantity.
type InvoiceLineItem struct {
	ID          int64  `json:"id"`
	InvoiceID   int64  `json:"invoice_id"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Position    int    `json:"position"`
}

// Validate checks the line item's fields and returns a ValidationError
// listing every problem found.
func (li *InvoiceLineItem) Validate() error {
	var problems []string
	if li.Description == "" {
		problems = append(problems, "line description required")
	}
	if p, err := decimal.NewFromString(li.UnitPrice); err != nil {
		problems = append(problems, "unit price must be a decimal number")
	} else if p.IsNegative() {
		problems = append(problems, "unit price cannot be negative")
	}
	if li.Quantity <= 0 {
		problems = append(problems, "quantity must be positive")
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}

// InvoiceTotals is the derived money of an invoice, rounded half-up to two
// decimals.
type InvoiceTotals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// ComputeInvoiceTotals sums unit_price*quantity over the lines, applies the
// percent tax rate, and rounds each figure half-up to two decimals.
func ComputeInvoiceTotals(lines []InvoiceLineItem, taxRate string) (InvoiceTotals, error) {
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return InvoiceTotals{}, fmt.Errorf("parsing tax rate %q: %w", taxRate, err)
	}

	subtotal := decimal.Zero
	for _, li := range lines {
		price, err := decimal.NewFromString(li.UnitPrice)
		if err != nil {
			return InvoiceTotals{}, fmt.Errorf("parsing unit price %q: %w", li.UnitPrice, err)
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)

	return InvoiceTotals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax),
	}, nil
}
