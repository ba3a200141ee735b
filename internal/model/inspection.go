package model

import (
	"fmt"
	"time"
)

// Inspection is one examination of one piece of equipment. Inspections are
// immutable once recorded: they are never edited or deleted, and a FAIL
// result red-tags the equipment in the same transaction.
type Inspection struct {
	ID             int64     `json:"id"`
	EquipmentID    string    `json:"equipment_id"`
	InspectionDate string    `json:"inspection_date"`
	Result         string    `json:"result"`
	InspectorName  string    `json:"inspector_name"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Inspection results.
const (
	ResultPass = "PASS"
	ResultFail = "FAIL"
)

// Field limits on intake.
const (
	MaxInspectorNameLen   = 100
	MaxInspectionNotesLen = 1000
)

// ValidResult reports whether r is PASS or FAIL.
func ValidResult(r string) bool {
	return r == ResultPass || r == ResultFail
}

// Validate checks the inspection's fields against today and returns a
// ValidationError listing every problem found.
func (i *Inspection) Validate(today time.Time) error {
	var problems []string
	if !ValidEquipmentID(i.EquipmentID) {
		problems = append(problems, "equipment id required")
	}
	if !ValidResult(i.Result) {
		problems = append(problems, "result must be PASS or FAIL")
	}
	if i.InspectorName == "" {
		problems = append(problems, "inspector name required")
	} else if len(i.InspectorName) > MaxInspectorNameLen {
		problems = append(problems, fmt.Sprintf("inspector name longer than %d characters", MaxInspectorNameLen))
	}
	if len(i.Notes) > MaxInspectionNotesLen {
		problems = append(problems, fmt.Sprintf("notes longer than %d characters", MaxInspectionNotesLen))
	}
	if i.InspectionDate == "" {
		problems = append(problems, "inspection date required")
	} else if d, err := ParseDate(i.InspectionDate); err != nil {
		problems = append(problems, "inspection date must be YYYY-MM-DD")
	} else if d.After(DateOnly(today)) {
		problems = append(problems, "inspection date cannot be in the future")
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}
