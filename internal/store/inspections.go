package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// CreateInspection records an inspection. A FAIL result red-tags the
// equipment in the same transaction: the inspection insert and the forced
// status transition commit together or not at all. The red-tag date is the
// inspection date, so the destruction countdown starts when the gear
// actually failed.
func CreateInspection(ctx context.Context, db *sql.DB, insp *model.Inspection) (*model.Inspection, error) {
	if err := insp.Validate(time.Now()); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM equipment WHERE equipment_id = ?`, insp.EquipmentID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("equipment %s: %w", insp.EquipmentID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading equipment status: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO inspections (equipment_id, inspection_date, result, inspector_name, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		insp.EquipmentID, insp.InspectionDate, insp.Result, insp.InspectorName, nullIfEmpty(insp.Notes),
	)
	if err != nil {
		return nil, wrapDB("creating inspection", err)
	}

	// FAIL forces RED_TAGGED through the same mechanism as a manual change,
	// attributed to the inspection. Already red-tagged gear stays as is; the
	// trail records transitions, not repeats.
	if insp.Result == model.ResultFail && status != model.StatusRedTagged {
		_, err = tx.ExecContext(ctx,
			`UPDATE equipment SET status = ?, job_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE equipment_id = ?`,
			model.StatusRedTagged, insp.EquipmentID,
		)
		if err != nil {
			return nil, wrapDB("red-tagging equipment", err)
		}
		reason := fmt.Sprintf("failed inspection by %s", insp.InspectorName)
		if err := insertStatusChange(ctx, tx, insp.EquipmentID, status, model.StatusRedTagged, insp.InspectionDate, reason, "system"); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing inspection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inspection id: %w", err)
	}
	return GetInspection(ctx, db, id)
}

// GetInspection returns an inspection by id, or nil if none exists.
func GetInspection(ctx context.Context, db *sql.DB, id int64) (*model.Inspection, error) {
	insp := &model.Inspection{}
	var notes sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, equipment_id, inspection_date, result, inspector_name, notes, created_at
		 FROM inspections WHERE id = ?`, id,
	).Scan(&insp.ID, &insp.EquipmentID, &insp.InspectionDate, &insp.Result, &insp.InspectorName, &notes, &insp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inspection: %w", err)
	}
	insp.Notes = notes.String
	return insp, nil
}

// ListInspections returns all inspections of a piece of equipment, newest
// first.
func ListInspections(ctx context.Context, db *sql.DB, equipmentID string) ([]model.Inspection, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, equipment_id, inspection_date, result, inspector_name, notes, created_at
		 FROM inspections WHERE equipment_id = ?
		 ORDER BY inspection_date DESC, id DESC`, equipmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inspections: %w", err)
	}
	defer rows.Close()

	var inspections []model.Inspection
	for rows.Next() {
		var insp model.Inspection
		var notes sql.NullString
		if err := rows.Scan(&insp.ID, &insp.EquipmentID, &insp.InspectionDate, &insp.Result, &insp.InspectorName, &notes, &insp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning inspection: %w", err)
		}
		insp.Notes = notes.String
		inspections = append(inspections, insp)
	}
	return inspections, rows.Err()
}

// CountInspections returns how many inspections a piece of equipment has.
func CountInspections(ctx context.Context, db *sql.DB, equipmentID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inspections WHERE equipment_id = ?`, equipmentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting inspections: %w", err)
	}
	return count, nil
}
