package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/highpoint-ops/gearlog/internal/db"
	"github.com/highpoint-ops/gearlog/internal/model"
)

func TestCreateEquipmentSequentialIDs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		e, err := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
		if err != nil {
			t.Fatalf("CreateEquipment %d: %v", i, err)
		}
		want := fmt.Sprintf("R/%03d", i)
		if e.EquipmentID != want {
			t.Errorf("expected id %s, got %s", want, e.EquipmentID)
		}
		if e.Status != model.StatusActive {
			t.Errorf("expected ACTIVE, got %s", e.Status)
		}
	}
}

func TestCreateEquipmentFirstIDPerType(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, err := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")
	if err != nil {
		t.Fatalf("CreateEquipment: %v", err)
	}
	if e.EquipmentID != "D/001" {
		t.Errorf("expected D/001 on empty store, got %s", e.EquipmentID)
	}

	// A second type starts its own sequence.
	h, err := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "H"}, "tester")
	if err != nil {
		t.Fatalf("CreateEquipment: %v", err)
	}
	if h.EquipmentID != "H/001" {
		t.Errorf("expected H/001, got %s", h.EquipmentID)
	}
}

func TestCreateEquipmentNumericSuffixOrdering(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// A legacy single-digit id must not be string-compared against R/10.
	if _, err := database.ExecContext(ctx,
		`INSERT INTO equipment (equipment_id, type_code, date_added_to_inventory, status) VALUES ('R/9', 'R', '2024-01-01', 'ACTIVE')`,
	); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	e, err := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	if err != nil {
		t.Fatalf("CreateEquipment: %v", err)
	}
	if e.EquipmentID != "R/010" {
		t.Errorf("expected R/010 after R/9, got %s", e.EquipmentID)
	}
}

func TestCreateEquipmentBadSuffixIsIntegrityError(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := database.ExecContext(ctx,
		`INSERT INTO equipment (equipment_id, type_code, date_added_to_inventory, status) VALUES ('R/abc', 'R', '2024-01-01', 'ACTIVE')`,
	); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	_, err := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	if !errors.Is(err, model.ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for unparseable suffix, got %v", err)
	}
}

func TestCreateEquipmentUnknownType(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "ZZ"}, "tester")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown type, got %v", err)
	}
}

func TestCreateEquipmentWritesInitialStatusChange(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, err := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")
	if err != nil {
		t.Fatalf("CreateEquipment: %v", err)
	}

	changes, err := ListStatusChanges(ctx, database, e.EquipmentID)
	if err != nil {
		t.Fatalf("ListStatusChanges: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 status change, got %d", len(changes))
	}
	if changes[0].OldStatus != "" {
		t.Errorf("initial row should have no old status, got %q", changes[0].OldStatus)
	}
	if changes[0].NewStatus != model.StatusActive {
		t.Errorf("expected ACTIVE, got %s", changes[0].NewStatus)
	}
}

func TestBatchCreateEquipment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	serials := []string{"SN-1", "SN-2", "SN-3", "SN-4", "SN-1"} // last is a duplicate
	result, err := BatchCreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, serials, 5, "tester")
	if err != nil {
		t.Fatalf("BatchCreateEquipment: %v", err)
	}
	if result.SuccessCount() != 4 {
		t.Errorf("expected 4 successes, got %d", result.SuccessCount())
	}
	if result.FailureCount() != 1 {
		t.Errorf("expected 1 failure, got %d", result.FailureCount())
	}
	if result.FailureCount() == 1 && result.Failures[0].Position != 5 {
		t.Errorf("expected failure at position 5, got %d", result.Failures[0].Position)
	}

	// No partial object for the rejected item.
	equipment, err := ListEquipment(ctx, database, EquipmentFilter{TypeCode: "R"})
	if err != nil {
		t.Fatalf("ListEquipment: %v", err)
	}
	if len(equipment) != 4 {
		t.Errorf("expected 4 items in store, got %d", len(equipment))
	}
}

func TestBatchCreateQuantityBounds(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, qty := range []int{0, 1, 51} {
		_, err := BatchCreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, nil, qty, "tester")
		if model.AsValidation(err) == nil {
			t.Errorf("quantity %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestListEquipmentFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rope, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R", Name: "Main line", SerialNumber: "RO-100"}, "tester")
	CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D", Name: "Rack descender"}, "tester")
	if _, err := SetEquipmentStatus(ctx, database, rope.EquipmentID, model.StatusRedTagged, "", "tester", false); err != nil {
		t.Fatalf("SetEquipmentStatus: %v", err)
	}

	byStatus, err := ListEquipment(ctx, database, EquipmentFilter{Status: model.StatusRedTagged})
	if err != nil {
		t.Fatalf("ListEquipment: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].EquipmentID != rope.EquipmentID {
		t.Errorf("status filter: expected [%s], got %v", rope.EquipmentID, byStatus)
	}

	byType, err := ListEquipment(ctx, database, EquipmentFilter{TypeCode: "D"})
	if err != nil {
		t.Fatalf("ListEquipment: %v", err)
	}
	if len(byType) != 1 {
		t.Errorf("type filter: expected 1 item, got %d", len(byType))
	}

	// Free-text search hits id, name, serial, and type description.
	for _, q := range []string{"R/001", "Main", "RO-100", "Rope"} {
		found, err := ListEquipment(ctx, database, EquipmentFilter{Search: q})
		if err != nil {
			t.Fatalf("ListEquipment(%q): %v", q, err)
		}
		if len(found) == 0 {
			t.Errorf("search %q: expected a hit", q)
		}
	}
}

func TestUpdateEquipment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "H"}, "tester")
	if err := UpdateEquipment(ctx, database, e.EquipmentID, "Rig harness", "HN-7", "2024-03-01", "crew 2"); err != nil {
		t.Fatalf("UpdateEquipment: %v", err)
	}

	got, _ := GetEquipment(ctx, database, e.EquipmentID)
	if got.Name != "Rig harness" || got.SerialNumber != "HN-7" || got.DatePutInService != "2024-03-01" {
		t.Errorf("unexpected equipment after update: %+v", got)
	}

	if err := UpdateEquipment(ctx, database, "H/999", "x", "", "", ""); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing equipment, got %v", err)
	}
}

func TestDeleteEquipmentBlockedByInspections(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")
	_, err := CreateInspection(ctx, database, &model.Inspection{
		EquipmentID:    e.EquipmentID,
		InspectionDate: model.FormatDate(time.Now()),
		Result:         model.ResultPass,
		InspectorName:  "Jamie",
	})
	if err != nil {
		t.Fatalf("CreateInspection: %v", err)
	}

	if err := DeleteEquipment(ctx, database, e.EquipmentID); !errors.Is(err, model.ErrIntegrity) {
		t.Errorf("expected ErrIntegrity deleting inspected equipment, got %v", err)
	}

	// The row must remain.
	got, _ := GetEquipment(ctx, database, e.EquipmentID)
	if got == nil {
		t.Fatal("equipment vanished despite failed delete")
	}
}

func TestDeleteEquipmentWithoutInspections(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")
	if err := DeleteEquipment(ctx, database, e.EquipmentID); err != nil {
		t.Fatalf("DeleteEquipment: %v", err)
	}

	got, _ := GetEquipment(ctx, database, e.EquipmentID)
	if got != nil {
		t.Error("expected equipment gone after delete")
	}
	changes, _ := ListStatusChanges(ctx, database, e.EquipmentID)
	if len(changes) != 0 {
		t.Errorf("expected status history removed, got %d rows", len(changes))
	}
}

func TestEquipmentPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	photo := []byte("fake jpeg data")
	if err := SetEquipmentPhoto(ctx, database, e.EquipmentID, photo, "image/jpeg"); err != nil {
		t.Fatalf("SetEquipmentPhoto: %v", err)
	}

	data, mime, err := GetEquipmentPhoto(ctx, database, e.EquipmentID)
	if err != nil {
		t.Fatalf("GetEquipmentPhoto: %v", err)
	}
	if string(data) != "fake jpeg data" || mime != "image/jpeg" {
		t.Errorf("unexpected photo data %q mime %q", data, mime)
	}
}
