package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/highpoint-ops/gearlog/internal/model"
)

func TestWorkbookRoundTrip(t *testing.T) {
	w := New()
	err := w.AddRedTagSheet([]model.RedTagCountdown{
		{
			EquipmentID:     "R/001",
			TypeCode:        "R",
			TypeDescription: "Rope",
			RedTagDate:      "2026-08-01",
			DestroyBy:       "2026-08-31",
			DaysRemaining:   2,
			Urgency:         model.UrgencyCritical,
		},
	})
	if err != nil {
		t.Fatalf("AddRedTagSheet: %v", err)
	}
	if err := w.AddOverdueSheet([]model.OverdueInspection{
		{EquipmentID: "D/001", TypeCode: "D", Status: model.StatusActive, NeverInspected: true},
	}); err != nil {
		t.Fatalf("AddOverdueSheet: %v", err)
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SheetRedTag || sheets[1] != SheetOverdue {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	got, err := f.GetCellValue(SheetRedTag, "A2")
	if err != nil || got != "R/001" {
		t.Errorf("expected R/001 in A2, got %q (%v)", got, err)
	}
	got, _ = f.GetCellValue(SheetRedTag, "H2")
	if got != model.UrgencyCritical {
		t.Errorf("expected urgency in H2, got %q", got)
	}

	// Never-inspected rows render "never" instead of dates.
	got, _ = f.GetCellValue(SheetOverdue, "F2")
	if got != "never" {
		t.Errorf("expected never in F2, got %q", got)
	}
}

func TestEmptyWorkbookRefusesToWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := New().Write(&buf); err == nil {
		t.Fatal("expected error for empty workbook")
	}
}
