package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// nextJobSeq finds the highest numeric suffix among existing job ids and
// returns the next one. Job ids start at A000, so the first sequence is 0.
func nextJobSeq(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT job_id FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("scanning job ids: %w", err)
	}
	defer rows.Close()

	next := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scanning job id: %w", err)
		}
		if !model.ValidJobID(id) {
			return 0, fmt.Errorf("%w: job id %q is not A-numeric", model.ErrIntegrity, id)
		}
		var seq int
		if _, err := fmt.Sscanf(id, "A%d", &seq); err != nil {
			return 0, fmt.Errorf("%w: job id %q suffix is not a number", model.ErrIntegrity, id)
		}
		if seq+1 > next {
			next = seq + 1
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("scanning job ids: %w", err)
	}
	return next, nil
}

// CreateJob creates a job with the next sequential id and its empty billing
// record in one transaction, retrying on id collision.
func CreateJob(ctx context.Context, db *sql.DB, j *model.Job) (*model.Job, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	status := j.Status
	if status == "" {
		status = model.JobStatusPending
	}

	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := createJobOnce(ctx, db, j, status)
		if err == nil {
			return GetJob(ctx, db, id)
		}
		if !isConstraint(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, wrapDB("creating job", lastErr)
}

func createJobOnce(ctx context.Context, db *sql.DB, j *model.Job, status string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextJobSeq(ctx, tx)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("A%03d", seq)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO jobs (job_id, customer_name, description, job_title, location_city, location_state, projected_start_date, projected_end_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, j.CustomerName, nullIfEmpty(j.Description), nullIfEmpty(j.JobTitle),
		nullIfEmpty(j.LocationCity), nullIfEmpty(j.LocationState),
		nullIfEmpty(j.ProjectedStartDate), nullIfEmpty(j.ProjectedEndDate), status,
	)
	if err != nil {
		return "", err
	}

	// Every job carries a billing record from day one.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO job_billing (job_id) VALUES (?)`, id,
	); err != nil {
		return "", fmt.Errorf("creating job billing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing job: %w", err)
	}
	return id, nil
}

// GetJob returns a job by id, or nil if none exists.
func GetJob(ctx context.Context, db *sql.DB, id string) (*model.Job, error) {
	j := &model.Job{}
	var description, title, city, state, start, end sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT job_id, customer_name, description, job_title, location_city, location_state,
		        projected_start_date, projected_end_date, status, created_at, updated_at
		 FROM jobs WHERE job_id = ?`, id,
	).Scan(&j.JobID, &j.CustomerName, &description, &title, &city, &state, &start, &end, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	j.Description = description.String
	j.JobTitle = title.String
	j.LocationCity = city.String
	j.LocationState = state.String
	j.ProjectedStartDate = start.String
	j.ProjectedEndDate = end.String
	return j, nil
}

// ListJobs returns jobs, optionally filtered by status, newest first.
func ListJobs(ctx context.Context, db *sql.DB, status string) ([]model.Job, error) {
	query := `SELECT job_id, customer_name, description, job_title, location_city, location_state,
	                 projected_start_date, projected_end_date, status, created_at, updated_at
	          FROM jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY job_id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		var description, title, city, state, start, end sql.NullString
		if err := rows.Scan(&j.JobID, &j.CustomerName, &description, &title, &city, &state, &start, &end, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		j.Description = description.String
		j.JobTitle = title.String
		j.LocationCity = city.String
		j.LocationState = state.String
		j.ProjectedStartDate = start.String
		j.ProjectedEndDate = end.String
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// UpdateJob updates a job's fields, including its status.
func UpdateJob(ctx context.Context, db *sql.DB, j *model.Job) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if j.Status == "" {
		return model.NewValidationError("job status required")
	}

	res, err := db.ExecContext(ctx,
		`UPDATE jobs
		 SET customer_name = ?, description = ?, job_title = ?, location_city = ?, location_state = ?,
		     projected_start_date = ?, projected_end_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE job_id = ?`,
		j.CustomerName, nullIfEmpty(j.Description), nullIfEmpty(j.JobTitle),
		nullIfEmpty(j.LocationCity), nullIfEmpty(j.LocationState),
		nullIfEmpty(j.ProjectedStartDate), nullIfEmpty(j.ProjectedEndDate), j.Status, j.JobID,
	)
	if err != nil {
		return wrapDB("updating job", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating job %s: %w", j.JobID, model.ErrNotFound)
	}
	return nil
}

// GetJobBilling returns the billing record of a job, or nil if the job does
// not exist.
func GetJobBilling(ctx context.Context, db *sql.DB, jobID string) (*model.JobBilling, error) {
	b := &model.JobBilling{}
	var bid, cost, invoiceDate, notes sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, job_id, bid_amount, actual_cost, payment_status, invoice_date, notes
		 FROM job_billing WHERE job_id = ?`, jobID,
	).Scan(&b.ID, &b.JobID, &bid, &cost, &b.PaymentStatus, &invoiceDate, &notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting job billing: %w", err)
	}
	b.BidAmount = bid.String
	b.ActualCost = cost.String
	b.InvoiceDate = invoiceDate.String
	b.Notes = notes.String
	return b, nil
}

// UpdateJobBilling updates a job's billing record.
func UpdateJobBilling(ctx context.Context, db *sql.DB, b *model.JobBilling) error {
	var problems []string
	if !model.ValidPaymentStatus(b.PaymentStatus) {
		problems = append(problems, "payment status must be PENDING, PAID, or OVERDUE")
	}
	for _, amount := range []string{b.BidAmount, b.ActualCost} {
		if amount != "" {
			if err := validDecimal(amount); err != nil {
				problems = append(problems, fmt.Sprintf("%q is not a decimal amount", amount))
			}
		}
	}
	if b.InvoiceDate != "" {
		if _, err := model.ParseDate(b.InvoiceDate); err != nil {
			problems = append(problems, "invoice date must be YYYY-MM-DD")
		}
	}
	if len(problems) > 0 {
		return model.NewValidationError(problems...)
	}

	res, err := db.ExecContext(ctx,
		`UPDATE job_billing
		 SET bid_amount = ?, actual_cost = ?, payment_status = ?, invoice_date = ?, notes = ?
		 WHERE job_id = ?`,
		nullIfEmpty(b.BidAmount), nullIfEmpty(b.ActualCost), b.PaymentStatus,
		nullIfEmpty(b.InvoiceDate), nullIfEmpty(b.Notes), b.JobID,
	)
	if err != nil {
		return wrapDB("updating job billing", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating billing for job %s: %w", b.JobID, model.ErrNotFound)
	}
	return nil
}

// AssignEquipmentToJob sends equipment into the field for a job. The job
// must be ACTIVE; each piece is applied independently and only gear in
// ACTIVE or WAREHOUSE status is accepted. Rejections are reported per item,
// never as a rollback of earlier successes.
func AssignEquipmentToJob(ctx context.Context, db *sql.DB, jobID string, equipmentIDs []string, changedBy string) (*model.BatchResult, error) {
	job, err := GetJob(ctx, db, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, model.ErrNotFound)
	}
	if job.Status != model.JobStatusActive {
		return nil, model.NewValidationError(fmt.Sprintf("job %s is %s: only ACTIVE jobs take equipment", jobID, job.Status))
	}

	result := &model.BatchResult{}
	for _, id := range equipmentIDs {
		if err := assignOne(ctx, db, jobID, id, changedBy); err != nil {
			result.Failures = append(result.Failures, model.BatchFailure{EquipmentID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

func assignOne(ctx context.Context, db *sql.DB, jobID, equipmentID, changedBy string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM equipment WHERE equipment_id = ?`, equipmentID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("equipment %s: %w", equipmentID, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading equipment status: %w", err)
	}
	if !model.Assignable(status) {
		return fmt.Errorf("equipment is %s: only ACTIVE or WAREHOUSE gear can go to a job", status)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE equipment SET status = ?, job_id = ?, updated_at = CURRENT_TIMESTAMP WHERE equipment_id = ?`,
		model.StatusInField, jobID, equipmentID,
	)
	if err != nil {
		return wrapDB("assigning equipment", err)
	}

	reason := fmt.Sprintf("assigned to job %s", jobID)
	if err := insertStatusChange(ctx, tx, equipmentID, status, model.StatusInField, "", reason, changedBy); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing assignment: %w", err)
	}
	return nil
}

// ReturnEquipmentFromJob brings equipment back from the field. Each piece is
// applied independently; only gear currently IN_FIELD on this job is
// accepted.
func ReturnEquipmentFromJob(ctx context.Context, db *sql.DB, jobID string, equipmentIDs []string, changedBy string) (*model.BatchResult, error) {
	job, err := GetJob(ctx, db, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, model.ErrNotFound)
	}

	result := &model.BatchResult{}
	for _, id := range equipmentIDs {
		if err := returnOne(ctx, db, jobID, id, changedBy); err != nil {
			result.Failures = append(result.Failures, model.BatchFailure{EquipmentID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

func returnOne(ctx context.Context, db *sql.DB, jobID, equipmentID, changedBy string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	var currentJob sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT status, job_id FROM equipment WHERE equipment_id = ?`, equipmentID,
	).Scan(&status, &currentJob)
	if err == sql.ErrNoRows {
		return fmt.Errorf("equipment %s: %w", equipmentID, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading equipment status: %w", err)
	}
	if status != model.StatusInField {
		return fmt.Errorf("equipment is %s: only IN_FIELD gear can be returned", status)
	}
	if currentJob.String != jobID {
		return fmt.Errorf("equipment is on job %s, not %s", currentJob.String, jobID)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE equipment SET status = ?, job_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE equipment_id = ?`,
		model.StatusActive, equipmentID,
	)
	if err != nil {
		return wrapDB("returning equipment", err)
	}

	reason := fmt.Sprintf("returned from job %s", jobID)
	if err := insertStatusChange(ctx, tx, equipmentID, status, model.StatusActive, "", reason, changedBy); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing return: %w", err)
	}
	return nil
}

// GetJobStats counts the equipment currently assigned to a job.
func GetJobStats(ctx context.Context, db *sql.DB, jobID string) (*model.JobStats, error) {
	stats := &model.JobStats{JobID: jobID}
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM equipment WHERE job_id = ?`, jobID,
	).Scan(&stats.Assigned)
	if err != nil {
		return nil, fmt.Errorf("counting assigned equipment: %w", err)
	}
	return stats, nil
}
