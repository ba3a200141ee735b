package store

import (
	"context"
	"testing"
	"time"

	"github.com/highpoint-ops/gearlog/internal/db"
	"github.com/highpoint-ops/gearlog/internal/model"
)

func TestSetEquipmentStatusWritesAuditRow(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")

	updated, err := SetEquipmentStatus(ctx, database, e.EquipmentID, model.StatusRedTagged, "frayed sheath", "alice", false)
	if err != nil {
		t.Fatalf("SetEquipmentStatus: %v", err)
	}
	if updated.Status != model.StatusRedTagged {
		t.Errorf("expected RED_TAGGED, got %s", updated.Status)
	}

	changes, _ := ListStatusChanges(ctx, database, e.EquipmentID)
	if len(changes) != 2 {
		t.Fatalf("expected 2 status changes (create + red tag), got %d", len(changes))
	}
	latest := changes[0]
	if latest.OldStatus != model.StatusActive || latest.NewStatus != model.StatusRedTagged {
		t.Errorf("unexpected transition %s -> %s", latest.OldStatus, latest.NewStatus)
	}
	if latest.RedTagDate != model.FormatDate(time.Now()) {
		t.Errorf("expected red_tag_date today, got %q", latest.RedTagDate)
	}
	if latest.ChangedBy != "alice" {
		t.Errorf("expected changed_by alice, got %q", latest.ChangedBy)
	}
}

func TestSetEquipmentStatusSameIsNoOp(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")

	updated, err := SetEquipmentStatus(ctx, database, e.EquipmentID, model.StatusActive, "", "alice", false)
	if err != nil {
		t.Fatalf("same-status set should succeed: %v", err)
	}
	if updated.Status != model.StatusActive {
		t.Errorf("expected ACTIVE, got %s", updated.Status)
	}

	// No new audit row for a non-transition.
	changes, _ := ListStatusChanges(ctx, database, e.EquipmentID)
	if len(changes) != 1 {
		t.Errorf("expected only the creation row, got %d", len(changes))
	}
}

func TestSetEquipmentStatusRejectsNonManualTargets(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")

	for _, status := range []string{model.StatusInField, model.StatusWarehouse, "BROKEN"} {
		_, err := SetEquipmentStatus(ctx, database, e.EquipmentID, status, "", "alice", false)
		if model.AsValidation(err) == nil {
			t.Errorf("status %s: expected validation error, got %v", status, err)
		}
	}
}

func TestRedTagReleaseBlockedByDefault(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")
	SetEquipmentStatus(ctx, database, e.EquipmentID, model.StatusRedTagged, "", "alice", false)

	_, err := SetEquipmentStatus(ctx, database, e.EquipmentID, model.StatusActive, "", "alice", false)
	if model.AsValidation(err) == nil {
		t.Fatalf("expected validation error for red-tag release, got %v", err)
	}

	got, _ := GetEquipment(ctx, database, e.EquipmentID)
	if got.Status != model.StatusRedTagged {
		t.Errorf("equipment should stay RED_TAGGED, got %s", got.Status)
	}

	// Destruction is still allowed.
	if _, err := SetEquipmentStatus(ctx, database, e.EquipmentID, model.StatusDestroyed, "", "alice", false); err != nil {
		t.Errorf("RED_TAGGED -> DESTROYED should succeed: %v", err)
	}
}

func TestRedTagReleaseAllowedWhenEnabled(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "D"}, "tester")
	SetEquipmentStatus(ctx, database, e.EquipmentID, model.StatusRedTagged, "", "alice", false)

	updated, err := SetEquipmentStatus(ctx, database, e.EquipmentID, model.StatusActive, "re-inspected by manufacturer", "alice", true)
	if err != nil {
		t.Fatalf("release should succeed with the switch on: %v", err)
	}
	if updated.Status != model.StatusActive {
		t.Errorf("expected ACTIVE, got %s", updated.Status)
	}
}

func TestSetEquipmentStatusUnknownEquipment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := SetEquipmentStatus(ctx, database, "D/404", model.StatusDestroyed, "", "alice", false)
	if err == nil {
		t.Fatal("expected error for unknown equipment")
	}
}

func TestManualStatusChangeClearsJob(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	job, _ := CreateJob(ctx, database, &model.Job{CustomerName: "Acme", Status: model.JobStatusActive})
	res, err := AssignEquipmentToJob(ctx, database, job.JobID, []string{e.EquipmentID}, "alice")
	if err != nil || res.FailureCount() != 0 {
		t.Fatalf("assign: %v %+v", err, res)
	}

	// Red-tagging gear in the field pulls it off the job.
	updated, err := SetEquipmentStatus(ctx, database, e.EquipmentID, model.StatusRedTagged, "failed in use", "alice", false)
	if err != nil {
		t.Fatalf("SetEquipmentStatus: %v", err)
	}
	if updated.JobID != "" {
		t.Errorf("expected job cleared, got %q", updated.JobID)
	}
}
