package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/highpoint-ops/gearlog/internal/db"
	"github.com/highpoint-ops/gearlog/internal/model"
)

func TestCreateJobSequentialIDs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		j, err := CreateJob(ctx, database, &model.Job{CustomerName: "Acme"})
		if err != nil {
			t.Fatalf("CreateJob %d: %v", i, err)
		}
		want := fmt.Sprintf("A%03d", i)
		if j.JobID != want {
			t.Errorf("expected %s, got %s", want, j.JobID)
		}
		if j.Status != model.JobStatusPending {
			t.Errorf("expected PENDING default, got %s", j.Status)
		}
	}
}

func TestCreateJobMakesBillingRecord(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	j, err := CreateJob(ctx, database, &model.Job{CustomerName: "Acme"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	billing, err := GetJobBilling(ctx, database, j.JobID)
	if err != nil {
		t.Fatalf("GetJobBilling: %v", err)
	}
	if billing == nil {
		t.Fatal("expected billing record created with the job")
	}
	if billing.PaymentStatus != model.PaymentPending {
		t.Errorf("expected PENDING payment status, got %s", billing.PaymentStatus)
	}
	if billing.BidAmount != "" || billing.ActualCost != "" {
		t.Errorf("expected empty amounts, got %+v", billing)
	}
}

func TestCreateJobValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateJob(ctx, database, &model.Job{})
	if model.AsValidation(err) == nil {
		t.Errorf("expected validation error for missing customer, got %v", err)
	}

	_, err = CreateJob(ctx, database, &model.Job{
		CustomerName:       "Acme",
		ProjectedStartDate: "2026-05-10",
		ProjectedEndDate:   "2026-05-01",
	})
	if model.AsValidation(err) == nil {
		t.Errorf("expected validation error for end before start, got %v", err)
	}
}

func TestUpdateJobBilling(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	j, _ := CreateJob(ctx, database, &model.Job{CustomerName: "Acme"})
	err := UpdateJobBilling(ctx, database, &model.JobBilling{
		JobID:         j.JobID,
		BidAmount:     "12500.00",
		ActualCost:    "9800.50",
		PaymentStatus: model.PaymentPaid,
		InvoiceDate:   "2026-02-01",
	})
	if err != nil {
		t.Fatalf("UpdateJobBilling: %v", err)
	}

	billing, _ := GetJobBilling(ctx, database, j.JobID)
	if billing.BidAmount != "12500.00" || billing.PaymentStatus != model.PaymentPaid {
		t.Errorf("unexpected billing after update: %+v", billing)
	}

	err = UpdateJobBilling(ctx, database, &model.JobBilling{JobID: j.JobID, BidAmount: "not-money", PaymentStatus: model.PaymentPending})
	if model.AsValidation(err) == nil {
		t.Errorf("expected validation error for bad amount, got %v", err)
	}
}

func TestAssignAndReturnEquipment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	// Move it to the warehouse the way the original data had it.
	if _, err := database.ExecContext(ctx,
		`UPDATE equipment SET status = ? WHERE equipment_id = ?`, model.StatusWarehouse, e.EquipmentID,
	); err != nil {
		t.Fatalf("seeding warehouse status: %v", err)
	}

	job, _ := CreateJob(ctx, database, &model.Job{CustomerName: "Acme", Status: model.JobStatusActive})
	if job.JobID != "A000" {
		t.Fatalf("expected A000, got %s", job.JobID)
	}

	result, err := AssignEquipmentToJob(ctx, database, job.JobID, []string{e.EquipmentID}, "alice")
	if err != nil {
		t.Fatalf("AssignEquipmentToJob: %v", err)
	}
	if result.SuccessCount() != 1 || result.FailureCount() != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	got, _ := GetEquipment(ctx, database, e.EquipmentID)
	if got.Status != model.StatusInField || got.JobID != "A000" {
		t.Errorf("expected IN_FIELD on A000, got %s on %q", got.Status, got.JobID)
	}

	// Assigning again is rejected per item: it is no longer ACTIVE/WAREHOUSE.
	result, err = AssignEquipmentToJob(ctx, database, job.JobID, []string{e.EquipmentID}, "alice")
	if err != nil {
		t.Fatalf("AssignEquipmentToJob: %v", err)
	}
	if result.SuccessCount() != 0 || result.FailureCount() != 1 {
		t.Errorf("expected rejection on re-assign, got %+v", result)
	}

	stats, _ := GetJobStats(ctx, database, job.JobID)
	if stats.Assigned != 1 {
		t.Errorf("expected 1 assigned, got %d", stats.Assigned)
	}

	result, err = ReturnEquipmentFromJob(ctx, database, job.JobID, []string{e.EquipmentID}, "alice")
	if err != nil {
		t.Fatalf("ReturnEquipmentFromJob: %v", err)
	}
	if result.SuccessCount() != 1 {
		t.Fatalf("unexpected return result %+v", result)
	}

	got, _ = GetEquipment(ctx, database, e.EquipmentID)
	if got.Status != model.StatusActive || got.JobID != "" {
		t.Errorf("expected ACTIVE with no job, got %s on %q", got.Status, got.JobID)
	}

	// Returning again is rejected: not IN_FIELD anymore.
	result, _ = ReturnEquipmentFromJob(ctx, database, job.JobID, []string{e.EquipmentID}, "alice")
	if result.FailureCount() != 1 {
		t.Errorf("expected rejection on re-return, got %+v", result)
	}
}

func TestAssignRequiresActiveJob(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	e, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	job, _ := CreateJob(ctx, database, &model.Job{CustomerName: "Acme"}) // PENDING

	_, err := AssignEquipmentToJob(ctx, database, job.JobID, []string{e.EquipmentID}, "alice")
	if model.AsValidation(err) == nil {
		t.Errorf("expected validation error for non-ACTIVE job, got %v", err)
	}
}

func TestAssignBatchPartialFailure(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ok1, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	ok2, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	tagged, _ := CreateEquipment(ctx, database, &model.Equipment{TypeCode: "R"}, "tester")
	SetEquipmentStatus(ctx, database, tagged.EquipmentID, model.StatusRedTagged, "", "alice", false)

	job, _ := CreateJob(ctx, database, &model.Job{CustomerName: "Acme", Status: model.JobStatusActive})

	result, err := AssignEquipmentToJob(ctx, database, job.JobID,
		[]string{ok1.EquipmentID, tagged.EquipmentID, ok2.EquipmentID, "R/404"}, "alice")
	if err != nil {
		t.Fatalf("AssignEquipmentToJob: %v", err)
	}
	if result.SuccessCount() != 2 {
		t.Errorf("expected 2 successes, got %d", result.SuccessCount())
	}
	if result.FailureCount() != 2 {
		t.Errorf("expected 2 failures, got %d", result.FailureCount())
	}

	// Earlier successes stay applied.
	got, _ := GetEquipment(ctx, database, ok1.EquipmentID)
	if got.Status != model.StatusInField {
		t.Errorf("expected %s IN_FIELD despite later failures, got %s", ok1.EquipmentID, got.Status)
	}
}

func TestListJobsByStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateJob(ctx, database, &model.Job{CustomerName: "Acme"})
	CreateJob(ctx, database, &model.Job{CustomerName: "Globex", Status: model.JobStatusActive})

	active, err := ListJobs(ctx, database, model.JobStatusActive)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(active) != 1 || active[0].CustomerName != "Globex" {
		t.Errorf("unexpected active jobs: %+v", active)
	}

	all, _ := ListJobs(ctx, database, "")
	if len(all) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(all))
	}
}
