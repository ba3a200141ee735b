package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// CreateEquipmentType creates a new equipment type. The type code becomes
// the prefix of every equipment id of that type and cannot be changed later.
func CreateEquipmentType(ctx context.Context, db *sql.DB, t *model.EquipmentType) (*model.EquipmentType, error) {
	if t.InspectionIntervalMonths == 0 {
		t.InspectionIntervalMonths = model.DefaultInspectionIntervalMonths
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	var lifespan any
	if t.IsSoftGoods {
		lifespan = t.LifespanYears
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO equipment_types (type_code, description, is_soft_goods, lifespan_years, inspection_interval_months, is_active, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TypeCode, t.Description, t.IsSoftGoods, lifespan, t.InspectionIntervalMonths, t.IsActive, t.SortOrder,
	)
	if err != nil {
		return nil, wrapDB("creating equipment type", err)
	}

	return GetEquipmentType(ctx, db, t.TypeCode)
}

// GetEquipmentType returns an equipment type by code, or nil if none exists.
func GetEquipmentType(ctx context.Context, db *sql.DB, code string) (*model.EquipmentType, error) {
	t := &model.EquipmentType{}
	var lifespan sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT type_code, description, is_soft_goods, lifespan_years, inspection_interval_months, is_active, sort_order, created_at
		 FROM equipment_types WHERE type_code = ?`, code,
	).Scan(&t.TypeCode, &t.Description, &t.IsSoftGoods, &lifespan, &t.InspectionIntervalMonths, &t.IsActive, &t.SortOrder, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment type: %w", err)
	}
	t.LifespanYears = int(lifespan.Int64)
	return t, nil
}

// ListEquipmentTypes returns equipment types in sort order. With activeOnly,
// deactivated types are skipped.
func ListEquipmentTypes(ctx context.Context, db *sql.DB, activeOnly bool) ([]model.EquipmentType, error) {
	query := `SELECT type_code, description, is_soft_goods, lifespan_years, inspection_interval_months, is_active, sort_order, created_at
	          FROM equipment_types`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order, type_code`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing equipment types: %w", err)
	}
	defer rows.Close()

	var types []model.EquipmentType
	for rows.Next() {
		var t model.EquipmentType
		var lifespan sql.NullInt64
		if err := rows.Scan(&t.TypeCode, &t.Description, &t.IsSoftGoods, &lifespan, &t.InspectionIntervalMonths, &t.IsActive, &t.SortOrder, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning equipment type: %w", err)
		}
		t.LifespanYears = int(lifespan.Int64)
		types = append(types, t)
	}
	return types, rows.Err()
}

// UpdateEquipmentType updates a type's mutable fields. The type code itself
// is immutable: existing equipment ids embed it.
func UpdateEquipmentType(ctx context.Context, db *sql.DB, t *model.EquipmentType) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var lifespan any
	if t.IsSoftGoods {
		lifespan = t.LifespanYears
	}
	res, err := db.ExecContext(ctx,
		`UPDATE equipment_types
		 SET description = ?, is_soft_goods = ?, lifespan_years = ?, inspection_interval_months = ?, is_active = ?, sort_order = ?
		 WHERE type_code = ?`,
		t.Description, t.IsSoftGoods, lifespan, t.InspectionIntervalMonths, t.IsActive, t.SortOrder, t.TypeCode,
	)
	if err != nil {
		return wrapDB("updating equipment type", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating equipment type %s: %w", t.TypeCode, model.ErrNotFound)
	}
	return nil
}
