package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Equipment represents an individually tracked piece of safety equipment.
// Equipment ids look like "R/001": the type code, a slash, and a zero-padded
// sequence number unique within the type.
type Equipment struct {
	EquipmentID          string `json:"equipment_id"`
	TypeCode             string `json:"type_code"`
	Name                 string `json:"name,omitempty"`
	SerialNumber         string `json:"serial_number,omitempty"`
	DateAddedToInventory string `json:"date_added_to_inventory"`
	DatePutInService     string `json:"date_put_in_service,omitempty"`
	Status               string `json:"status"`
	JobID                string `json:"job_id,omitempty"`
	Notes                string `json:"notes,omitempty"`
	PhotoMime            string `json:"photo_mime,omitempty"`

	// Joined fields (not always populated).
	TypeDescription string `json:"type_description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Equipment statuses.
const (
	StatusActive    = "ACTIVE"
	StatusRedTagged = "RED_TAGGED"
	StatusDestroyed = "DESTROYED"
	StatusInField   = "IN_FIELD"
	StatusWarehouse = "WAREHOUSE"
)

// MaxSerialNumberLen caps serial numbers on intake.
const MaxSerialNumberLen = 50

// ValidStatus reports whether s is one of the equipment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusRedTagged, StatusDestroyed, StatusInField, StatusWarehouse:
		return true
	}
	return false
}

// ManualStatus reports whether s may be set through the manual status-change
// path. IN_FIELD and WAREHOUSE are driven by job assignment, not by hand.
func ManualStatus(s string) bool {
	switch s {
	case StatusActive, StatusRedTagged, StatusDestroyed:
		return true
	}
	return false
}

// Assignable reports whether equipment in status s may be sent to a job.
func Assignable(s string) bool {
	return s == StatusActive || s == StatusWarehouse
}

// CanReturnToService reports whether equipment in status s is ever allowed
// back into active service. Red-tagged gear is condemned: the answer is no
// unless the deployment explicitly enables red-tag release.
func CanReturnToService(s string) bool {
	return s != StatusRedTagged && s != StatusDestroyed
}

var equipmentIDRe = regexp.MustCompile(`^[A-Z]{1,4}/[0-9]{3,}$`)

// ValidEquipmentID reports whether id has the TYPE/NNN shape.
func ValidEquipmentID(id string) bool {
	return equipmentIDRe.MatchString(id)
}

// FormatEquipmentID builds an equipment id from a type code and a sequence
// number. Sequences below 1000 are zero-padded to three digits; larger ones
// widen naturally.
func FormatEquipmentID(typeCode string, seq int) string {
	return fmt.Sprintf("%s/%03d", typeCode, seq)
}

// ParseEquipmentID splits an equipment id into its type code and integer
// sequence. The sequence is parsed numerically so that R/9 style legacy ids
// order before R/10.
func ParseEquipmentID(id string) (typeCode string, seq int, err error) {
	code, num, ok := strings.Cut(id, "/")
	if !ok {
		return "", 0, fmt.Errorf("equipment id %q: missing '/'", id)
	}
	seq, err = strconv.Atoi(num)
	if err != nil || seq < 0 {
		return "", 0, fmt.Errorf("equipment id %q: suffix is not a number", id)
	}
	return code, seq, nil
}
