package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// insertStatusChange appends one row to the equipment audit trail. An empty
// oldStatus records creation; redTagDate is set only on RED_TAGGED rows.
func insertStatusChange(ctx context.Context, tx *sql.Tx, equipmentID, oldStatus, newStatus, redTagDate, reason, changedBy string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO status_changes (equipment_id, old_status, new_status, red_tag_date, reason, changed_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		equipmentID, nullIfEmpty(oldStatus), newStatus, nullIfEmpty(redTagDate), nullIfEmpty(reason), nullIfEmpty(changedBy),
	)
	if err != nil {
		return fmt.Errorf("recording status change: %w", err)
	}
	return nil
}

// SetEquipmentStatus moves a piece of equipment to a manually settable
// status (ACTIVE, RED_TAGGED, or DESTROYED) and appends the audit row in the
// same transaction. Setting the current status again is a no-op success and
// writes no row: the audit trail records transitions only.
//
// Red-tagged gear is condemned and may not be set back to ACTIVE unless the
// deployment explicitly allows red-tag release.
func SetEquipmentStatus(ctx context.Context, db *sql.DB, id, newStatus, reason, changedBy string, allowRedTagRelease bool) (*model.Equipment, error) {
	if !model.ManualStatus(newStatus) {
		return nil, model.NewValidationError("status must be ACTIVE, RED_TAGGED, or DESTROYED")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM equipment WHERE equipment_id = ?`, id,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("equipment %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading equipment status: %w", err)
	}

	if current == newStatus {
		// Release the tx before reading through the pool: with a single
		// connection the read would otherwise wait on the tx forever.
		tx.Rollback()
		return GetEquipment(ctx, db, id)
	}

	if current == model.StatusRedTagged && newStatus == model.StatusActive && !allowRedTagRelease {
		return nil, model.NewValidationError("red-tagged equipment cannot return to service")
	}

	redTagDate := ""
	if newStatus == model.StatusRedTagged {
		redTagDate = model.FormatDate(time.Now())
	}

	// Leaving IN_FIELD by hand also drops the job association.
	_, err = tx.ExecContext(ctx,
		`UPDATE equipment SET status = ?, job_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE equipment_id = ?`,
		newStatus, id,
	)
	if err != nil {
		return nil, wrapDB("updating equipment status", err)
	}

	if err := insertStatusChange(ctx, tx, id, current, newStatus, redTagDate, reason, changedBy); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status change: %w", err)
	}
	return GetEquipment(ctx, db, id)
}

// ListStatusChanges returns the audit trail for a piece of equipment, newest
// first.
func ListStatusChanges(ctx context.Context, db *sql.DB, equipmentID string) ([]model.StatusChange, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, equipment_id, old_status, new_status, change_date, red_tag_date, reason, changed_by
		 FROM status_changes WHERE equipment_id = ?
		 ORDER BY change_date DESC, id DESC`, equipmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing status changes: %w", err)
	}
	defer rows.Close()

	var changes []model.StatusChange
	for rows.Next() {
		var c model.StatusChange
		var oldStatus, redTagDate, reason, changedBy sql.NullString
		if err := rows.Scan(&c.ID, &c.EquipmentID, &oldStatus, &c.NewStatus, &c.ChangeDate, &redTagDate, &reason, &changedBy); err != nil {
			return nil, fmt.Errorf("scanning status change: %w", err)
		}
		c.OldStatus = oldStatus.String
		c.RedTagDate = redTagDate.String
		c.Reason = reason.String
		c.ChangedBy = changedBy.String
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// LatestRedTagDate returns the red-tag date of the most recent RED_TAGGED
// transition for a piece of equipment, or "" if it was never red-tagged.
func LatestRedTagDate(ctx context.Context, db *sql.DB, equipmentID string) (string, error) {
	var date sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT red_tag_date FROM status_changes
		 WHERE equipment_id = ? AND new_status = ? AND red_tag_date IS NOT NULL
		 ORDER BY change_date DESC, id DESC LIMIT 1`,
		equipmentID, model.StatusRedTagged,
	).Scan(&date)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting red-tag date: %w", err)
	}
	return date.String, nil
}
