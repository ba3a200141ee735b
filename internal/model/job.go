package model

import (
	"regexp"
	"time"
)

// Job is a customer engagement. Equipment is assigned to a job while the
// crew is in the field and returned when the work is done. Job ids are
// sequential: A000, A001, ...
type Job struct {
	JobID              string    `json:"job_id"`
	CustomerName       string    `json:"customer_name"`
	Description        string    `json:"description,omitempty"`
	JobTitle           string    `json:"job_title,omitempty"`
	LocationCity       string    `json:"location_city,omitempty"`
	LocationState      string    `json:"location_state,omitempty"`
	ProjectedStartDate string    `json:"projected_start_date,omitempty"`
	ProjectedEndDate   string    `json:"projected_end_date,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Job statuses.
const (
	JobStatusPending      = "PENDING"
	JobStatusBidSubmitted = "BID_SUBMITTED"
	JobStatusActive       = "ACTIVE"
	JobStatusCompleted    = "COMPLETED"
	JobStatusCancelled    = "CANCELLED"
)

// ValidJobStatus reports whether s is one of the job statuses.
func ValidJobStatus(s string) bool {
	switch s {
	case JobStatusPending, JobStatusBidSubmitted, JobStatusActive, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

var jobIDRe = regexp.MustCompile(`^A[0-9]{3,}$`)

// ValidJobID reports whether id has the Annn shape.
func ValidJobID(id string) bool {
	return jobIDRe.MatchString(id)
}

// Validate checks the job's field constraints and returns a ValidationError
// listing every problem found.
func (j *Job) Validate() error {
	var problems []string
	if j.CustomerName == "" {
		problems = append(problems, "customer name required")
	}
	if j.Status != "" && !ValidJobStatus(j.Status) {
		problems = append(problems, "invalid job status")
	}
	var start, end time.Time
	var haveStart, haveEnd bool
	if j.ProjectedStartDate != "" {
		d, err := ParseDate(j.ProjectedStartDate)
		if err != nil {
			problems = append(problems, "projected start date must be YYYY-MM-DD")
		} else {
			start, haveStart = d, true
		}
	}
	if j.ProjectedEndDate != "" {
		d, err := ParseDate(j.ProjectedEndDate)
		if err != nil {
			problems = append(problems, "projected end date must be YYYY-MM-DD")
		} else {
			end, haveEnd = d, true
		}
	}
	if haveStart && haveEnd && end.Before(start) {
		problems = append(problems, "projected end date before start date")
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}

// JobBilling is the money side of a job, created empty alongside it.
type JobBilling struct {
	ID            int64  `json:"id"`
	JobID         string `json:"job_id"`
	BidAmount     string `json:"bid_amount,omitempty"`
	ActualCost    string `json:"actual_cost,omitempty"`
	PaymentStatus string `json:"payment_status"`
	InvoiceDate   string `json:"invoice_date,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Payment statuses.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentOverdue = "OVERDUE"
)

// ValidPaymentStatus reports whether s is one of the payment statuses.
func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentOverdue
}

// JobStats counts the equipment currently assigned to a job by status.
type JobStats struct {
	JobID    string `json:"job_id"`
	Assigned int    `json:"assigned"`
}
