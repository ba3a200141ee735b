package model

import "testing"

func TestComputeInvoiceTotals(t *testing.T) {
	lines := []InvoiceLineItem{
		{Description: "Rope access crew, day rate", UnitPrice: "10.00", Quantity: 3},
		{Description: "Consumables", UnitPrice: "5.50", Quantity: 2},
	}

	totals, err := ComputeInvoiceTotals(lines, "8.0")
	if err != nil {
		t.Fatalf("ComputeInvoiceTotals: %v", err)
	}

	if got := totals.Subtotal.StringFixed(2); got != "41.00" {
		t.Errorf("subtotal = %s, want 41.00", got)
	}
	if got := totals.TaxAmount.StringFixed(2); got != "3.28" {
		t.Errorf("tax = %s, want 3.28", got)
	}
	if got := totals.TotalAmount.StringFixed(2); got != "44.28" {
		t.Errorf("total = %s, want 44.28", got)
	}
}

func TestComputeInvoiceTotalsRounding(t *testing.T) {
	tests := []struct {
		name     string
		lines    []InvoiceLineItem
		taxRate  string
		subtotal string
		tax      string
		total    string
	}{
		{
			"half cent rounds up",
			[]InvoiceLineItem{{UnitPrice: "0.125", Quantity: 1}},
			"0",
			"0.13", "0.00", "0.13",
		},
		{
			"tax half cent rounds up",
			[]InvoiceLineItem{{UnitPrice: "5.00", Quantity: 1}},
			"7.5", // 0.375 tax
			"5.00", "0.38", "5.38",
		},
		{
			"no lines",
			nil,
			"8.0",
			"0.00", "0.00", "0.00",
		},
		{
			"quantity scales before rounding",
			[]InvoiceLineItem{{UnitPrice: "0.333", Quantity: 3}},
			"0",
			"1.00", "0.00", "1.00",
		},
	}

	for _, tt := range tests {
		totals, err := ComputeInvoiceTotals(tt.lines, tt.taxRate)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if got := totals.Subtotal.StringFixed(2); got != tt.subtotal {
			t.Errorf("%s: subtotal = %s, want %s", tt.name, got, tt.subtotal)
		}
		if got := totals.TaxAmount.StringFixed(2); got != tt.tax {
			t.Errorf("%s: tax = %s, want %s", tt.name, got, tt.tax)
		}
		if got := totals.TotalAmount.StringFixed(2); got != tt.total {
			t.Errorf("%s: total = %s, want %s", tt.name, got, tt.total)
		}
	}
}

func TestComputeInvoiceTotalsErrors(t *testing.T) {
	if _, err := ComputeInvoiceTotals([]InvoiceLineItem{{UnitPrice: "ten", Quantity: 1}}, "8.0"); err == nil {
		t.Error("expected error for unparseable unit price")
	}
	if _, err := ComputeInvoiceTotals(nil, "eight"); err == nil {
		t.Error("expected error for unparseable tax rate")
	}
}

func TestInvoiceLineItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		li      InvoiceLineItem
		wantErr bool
	}{
		{"valid", InvoiceLineItem{Description: "Crew", UnitPrice: "100.00", Quantity: 2}, false},
		{"missing description", InvoiceLineItem{UnitPrice: "100.00", Quantity: 2}, true},
		{"bad price", InvoiceLineItem{Description: "Crew", UnitPrice: "1oo", Quantity: 2}, true},
		{"negative price", InvoiceLineItem{Description: "Crew", UnitPrice: "-5.00", Quantity: 2}, true},
		{"zero quantity", InvoiceLineItem{Description: "Crew", UnitPrice: "5.00", Quantity: 0}, true},
	}

	for _, tt := range tests {
		err := tt.li.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
