// Package store persists gearlog's entities in SQLite through database/sql.
// Functions take the database handle explicitly; multi-step writes run in a
// transaction so that a status transition and its audit row commit together
// or not at all.
package store

import (
	"fmt"
	"strings"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// wrapDB wraps a database error with operation context. Constraint
// violations (duplicate keys, foreign keys, CHECK failures) are additionally
// marked with model.ErrIntegrity so callers can tell a violated invariant
// from an unreachable database.
func wrapDB(op string, err error) error {
	if isConstraint(err) {
		return fmt.Errorf("%s: %w: %v", op, model.ErrIntegrity, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isConstraint reports whether err is a SQLite constraint violation. The
// modernc driver surfaces these as "constraint failed" message variants.
func isConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "constraint")
}
