package model

// Batch operation limits.
const (
	BatchMinQuantity = 2
	BatchMaxQuantity = 50
)

// BatchFailure describes one rejected item of a batch operation. Position is
// the 1-based slot in the request; EquipmentID is set when the item exists.
type BatchFailure struct {
	Position    int    `json:"position,omitempty"`
	EquipmentID string `json:"equipment_id,omitempty"`
	Reason      string `json:"reason"`
}

// BatchResult reports per-item outcomes of a batch operation. Items are
// applied independently: a failure never rolls back earlier successes.
type BatchResult struct {
	Succeeded []string       `json:"succeeded"`
	Failures  []BatchFailure `json:"failures,omitempty"`
}

// SuccessCount returns the number of items that were applied.
func (r *BatchResult) SuccessCount() int { return len(r.Succeeded) }

// FailureCount returns the number of items that were rejected.
func (r *BatchResult) FailureCount() int { return len(r.Failures) }
