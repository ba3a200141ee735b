package store

import (
	"context"
	"testing"
	"time"

	"github.com/highpoint-ops/gearlog/internal/db"
	"github.com/highpoint-ops/gearlog/internal/model"
)

func TestOverdueInspectionsReport(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	today := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	// Never inspected: always overdue, sorts first.
	never, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")

	// Inspected 8 months ago with a 6-month interval: overdue.
	stale, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	CreateInspection(ctx, database, &model.Inspection{
		EquipmentID:    stale.EquipmentID,
		InspectionDate: model.FormatDate(today.AddDate(0, -8, 0)),
		Result:         model.ResultPass,
		InspectorName:  "Jamie",
	})

	// Inspected last month: fine.
	fresh, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "H"}, "tester")
	CreateInspection(ctx, database, &model.Inspection{
		EquipmentID:    fresh.EquipmentID,
		InspectionDate: model.FormatDate(today.AddDate(0, -1, 0)),
		Result:         model.ResultPass,
		InspectorName:  "Jamie",
	})

	// Red-tagged gear is not on the inspection schedule.
	tagged, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "B"}, "tester")
	SetEquipmentStatus(ctx, database, tagged.EquipmentID, model.StatusRedTagged, "", "alice", false)

	report, err := OverdueInspections(ctx, database, today)
	if err != nil {
		t.Fatalf("OverdueInspections: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("expected 2 overdue, got %d: %+v", len(report), report)
	}
	if report[0].EquipmentID != never.EquipmentID || !report[0].NeverInspected {
		t.Errorf("expected never-inspected gear first, got %+v", report[0])
	}
	if report[1].EquipmentID != stale.EquipmentID {
		t.Errorf("expected %s second, got %s", stale.EquipmentID, report[1].EquipmentID)
	}
	// 8 months back + 6-month interval: due 2 months ago.
	wantDue := model.FormatDate(today.AddDate(0, -2, 0))
	if report[1].NextDueDate != wantDue {
		t.Errorf("expected next due %s, got %s", wantDue, report[1].NextDueDate)
	}
	if report[1].DaysOverdue <= 0 {
		t.Errorf("expected positive days overdue, got %d", report[1].DaysOverdue)
	}
}

func TestRedTagReportCountdown(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()
	today := model.DateOnly(now)

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")
	CreateInspection(ctx, database, &model.Inspection{
		EquipmentID:    e.EquipmentID,
		InspectionDate: model.FormatDate(now),
		Result:         model.ResultFail,
		InspectorName:  "Jamie",
	})

	report, err := RedTagReport(ctx, database, today)
	if err != nil {
		t.Fatalf("RedTagReport: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report))
	}
	row := report[0]
	if row.DestroyBy != model.FormatDate(today.AddDate(0, 0, 30)) {
		t.Errorf("expected destroy_by today+30, got %s", row.DestroyBy)
	}
	if row.DaysRemaining != 30 {
		t.Errorf("expected 30 days remaining, got %d", row.DaysRemaining)
	}
	if row.Urgency != model.UrgencyHigh {
		t.Errorf("expected HIGH urgency at 30 days, got %s", row.Urgency)
	}
}

func TestRedTagReportOverdueForDestruction(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")
	CreateInspection(ctx, database, &model.Inspection{
		EquipmentID:    e.EquipmentID,
		InspectionDate: model.FormatDate(today.AddDate(0, 0, -45)),
		Result:         model.ResultFail,
		InspectorName:  "Jamie",
	})

	report, err := RedTagReport(ctx, database, today)
	if err != nil {
		t.Fatalf("RedTagReport: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report))
	}
	if report[0].DaysRemaining != -15 {
		t.Errorf("expected -15 days remaining, got %d", report[0].DaysRemaining)
	}
	if report[0].Urgency != model.UrgencyOverdue {
		t.Errorf("expected OVERDUE, got %s", report[0].Urgency)
	}
}

func TestExpiringSoftGoodsReport(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	// Harness type is seeded soft goods with a 10-year lifespan. First use
	// 9 years 7 months ago: expires in 5 months, inside the window.
	firstUse := today.AddDate(-9, -7, 0)
	soon, _ := CreateEquipment(ctx, database, &model.Equipment{
		TypeCode:         "H",
		DatePutInService: model.FormatDate(firstUse),
	}, "tester")

	// First use 2 years ago: expires far outside the window.
	CreateEquipment(ctx, database, &model.Equipment{
		TypeCode:         "H",
		DatePutInService: model.FormatDate(today.AddDate(-2, 0, 0)),
	}, "tester")

	// Already expired: belongs on the overdue side, not here.
	CreateEquipment(ctx, database, &model.Equipment{
		TypeCode:         "H",
		DatePutInService: model.FormatDate(today.AddDate(-11, 0, 0)),
	}, "tester")

	// Hard goods never expire.
	CreateEquipment(ctx, database, &model.Equipment{
		TypeCode:         "D",
		DatePutInService: model.FormatDate(firstUse),
	}, "tester")

	report, err := ExpiringSoftGoods(ctx, database, today)
	if err != nil {
		t.Fatalf("ExpiringSoftGoods: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 expiring item, got %d: %+v", len(report), report)
	}
	row := report[0]
	if row.EquipmentID != soon.EquipmentID {
		t.Errorf("expected %s, got %s", soon.EquipmentID, row.EquipmentID)
	}

	wantExpiry := firstUse.AddDate(10, 0, 0)
	if row.ExpiryDate != model.FormatDate(wantExpiry) {
		t.Errorf("expected expiry %s, got %s", model.FormatDate(wantExpiry), row.ExpiryDate)
	}
	if row.DaysRemaining != model.DaysBetween(today, wantExpiry) {
		t.Errorf("expected %d days remaining, got %d", model.DaysBetween(today, wantExpiry), row.DaysRemaining)
	}
}

func TestStatusSummary(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	SetEquipmentStatus(ctx, database, a.EquipmentID, model.StatusDestroyed, "", "alice", false)

	summary, err := StatusSummary(ctx, database)
	if err != nil {
		t.Fatalf("StatusSummary: %v", err)
	}
	if summary[model.StatusActive] != 1 || summary[model.StatusDestroyed] != 1 {
		t.Errorf("unexpected summary %v", summary)
	}
}
