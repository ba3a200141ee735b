package model

import "time"

// StatusChange is one row of the append-only equipment audit trail. The
// first row for a piece of equipment records its creation (old status NULL,
// new status ACTIVE); every later transition appends exactly one row.
type StatusChange struct {
	ID          int64     `json:"id"`
	EquipmentID string    `json:"equipment_id"`
	OldStatus   string    `json:"old_status,omitempty"`
	NewStatus   string    `json:"new_status"`
	ChangeDate  time.Time `json:"change_date"`
	RedTagDate  string    `json:"red_tag_date,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	ChangedBy   string    `json:"changed_by,omitempty"`
}
