package model

import (
	"fmt"
	"time"
)

// Compliance rules, evaluated at read time. Every function here is pure and
// takes "today" explicitly; date strings are ISO YYYY-MM-DD.

// RedTagMaxDays is the destruction countdown for red-tagged gear: thirty
// days from the red-tag date, not configurable.
const RedTagMaxDays = 30

// DateLayout is the wire and storage format of date-only fields.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly truncates a time to UTC midnight so that date comparisons ignore
// the clock.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b (negative if b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)) / (24 * time.Hour))
}

// NextInspectionDue returns the date an inspection becomes due, one interval
// after the last inspection. Calendar months, normalized the standard way
// (Jan 31 + 1 month rolls into March), never a 30-day approximation.
func NextInspectionDue(lastInspection time.Time, intervalMonths int) time.Time {
	return DateOnly(lastInspection).AddDate(0, intervalMonths, 0)
}

// InspectionOverdue reports whether equipment last inspected on
// lastInspection (zero time if never) has exceeded its interval by today.
// Equipment that has never been inspected is always overdue.
func InspectionOverdue(lastInspection time.Time, intervalMonths int, today time.Time) bool {
	if lastInspection.IsZero() {
		return true
	}
	return NextInspectionDue(lastInspection, intervalMonths).Before(DateOnly(today))
}

// RedTagDestroyBy returns the date red-tagged equipment must be destroyed
// by: the red-tag date plus RedTagMaxDays.
func RedTagDestroyBy(redTagDate time.Time) time.Time {
	return DateOnly(redTagDate).AddDate(0, 0, RedTagMaxDays)
}

// SoftGoodsExpiry returns the retirement date of a soft-goods item: its
// first-use date plus the type's lifespan in calendar years. A Feb 29
// first-use date lands on Mar 1 in non-leap years.
func SoftGoodsExpiry(firstUse time.Time, lifespanYears int) time.Time {
	return DateOnly(firstUse).AddDate(lifespanYears, 0, 0)
}

// ExpiringSoon reports whether an expiry date falls in the warning window:
// after today and no more than one year out. Already-expired gear belongs on
// the overdue side, far-future gear on neither.
func ExpiringSoon(expiry, today time.Time) bool {
	today = DateOnly(today)
	expiry = DateOnly(expiry)
	return expiry.After(today) && !expiry.After(today.AddDate(1, 0, 0))
}

// Urgency buckets for a days-remaining figure.
const (
	UrgencyOverdue  = "OVERDUE"
	UrgencyCritical = "CRITICAL"
	UrgencyHigh     = "HIGH"
	UrgencyMedium   = "MEDIUM"
	UrgencyLow      = "LOW"
)

// UrgencyFor classifies days remaining until a deadline.
func UrgencyFor(daysRemaining int) string {
	switch {
	case daysRemaining < 0:
		return UrgencyOverdue
	case daysRemaining <= 7:
		return UrgencyCritical
	case daysRemaining <= 30:
		return UrgencyHigh
	case daysRemaining <= 90:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// OverdueInspection is one row of the overdue-inspections report.
type OverdueInspection struct {
	EquipmentID        string `json:"equipment_id"`
	TypeCode           string `json:"type_code"`
	TypeDescription    string `json:"type_description"`
	Name               string `json:"name,omitempty"`
	Status             string `json:"status"`
	LastInspectionDate string `json:"last_inspection_date,omitempty"`
	NextDueDate        string `json:"next_due_date,omitempty"`
	DaysOverdue        int    `json:"days_overdue"`
	NeverInspected     bool   `json:"never_inspected"`
}

// RedTagCountdown is one row of the red-tag destruction report. DaysRemaining
// goes negative once the gear is overdue for destruction.
type RedTagCountdown struct {
	EquipmentID     string `json:"equipment_id"`
	TypeCode        string `json:"type_code"`
	TypeDescription string `json:"type_description"`
	Name            string `json:"name,omitempty"`
	RedTagDate      string `json:"red_tag_date"`
	DestroyBy       string `json:"destroy_by"`
	DaysRemaining   int    `json:"days_remaining"`
	Urgency         string `json:"urgency"`
}

// ExpiringSoftGood is one row of the soft-goods expiry report.
type ExpiringSoftGood struct {
	EquipmentID      string `json:"equipment_id"`
	TypeCode         string `json:"type_code"`
	TypeDescription  string `json:"type_description"`
	Name             string `json:"name,omitempty"`
	DatePutInService string `json:"date_put_in_service"`
	LifespanYears    int    `json:"lifespan_years"`
	ExpiryDate       string `json:"expiry_date"`
	DaysRemaining    int    `json:"days_remaining"`
	Urgency          string `json:"urgency"`
}
