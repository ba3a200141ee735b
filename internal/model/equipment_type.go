package model

import (
	"fmt"
	"regexp"
	"time"
)

// EquipmentType is a category of equipment (rope, harness, descender). The
// type code is the prefix of every equipment id of that type.
type EquipmentType struct {
	TypeCode                 string    `json:"type_code"`
	Description              string    `json:"description"`
	IsSoftGoods              bool      `json:"is_soft_goods"`
	LifespanYears            int       `json:"lifespan_years,omitempty"`
	InspectionIntervalMonths int       `json:"inspection_interval_months"`
	IsActive                 bool      `json:"is_active"`
	SortOrder                int       `json:"sort_order"`
	CreatedAt                time.Time `json:"created_at"`
}

// DefaultInspectionIntervalMonths applies when a type is created without an
// explicit interval.
const DefaultInspectionIntervalMonths = 6

var typeCodeRe = regexp.MustCompile(`^[A-Z]{1,4}$`)

// ValidTypeCode reports whether code is 1-4 uppercase letters.
func ValidTypeCode(code string) bool {
	return typeCodeRe.MatchString(code)
}

// Validate checks the type's field constraints and returns a ValidationError
// listing every problem found.
func (t *EquipmentType) Validate() error {
	var problems []string
	if !ValidTypeCode(t.TypeCode) {
		problems = append(problems, "type code must be 1-4 uppercase letters")
	}
	if t.Description == "" {
		problems = append(problems, "description required")
	}
	if t.IsSoftGoods && t.LifespanYears <= 0 {
		problems = append(problems, "soft goods require a positive lifespan in years")
	}
	if !t.IsSoftGoods && t.LifespanYears != 0 {
		problems = append(problems, "lifespan only applies to soft goods")
	}
	if t.InspectionIntervalMonths <= 0 {
		problems = append(problems, fmt.Sprintf("inspection interval must be positive (default %d months)", DefaultInspectionIntervalMonths))
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}
