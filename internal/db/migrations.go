package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at the
// end.
var migrations = []string{
	// Migration 1: Seed the standard equipment types on first run. INSERT OR
	// IGNORE keeps re-runs and operator edits safe.
	`INSERT OR IGNORE INTO equipment_types
	     (type_code, description, is_soft_goods, lifespan_years, inspection_interval_months, is_active, sort_order)
	 VALUES
	     ('D', 'Descender', 0, NULL, 6, 1, 1),
	     ('R', 'Rope', 1, 10, 6, 1, 2),
	     ('H', 'Harness', 1, 10, 6, 1, 3),
	     ('B', 'Backup Device', 0, NULL, 6, 1, 4)`,
}

// Migrate ensures the schema exists and runs the migration list.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
