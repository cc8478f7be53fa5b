package domain

import "time"

// Application statuses. Pending on submission; the employer moves it on.
const (
	ApplicationPending  = "pending"
	ApplicationReviewed = "reviewed"
	ApplicationRejected = "rejected"
)

type Application struct {
	ID         string    `json:"id"`
	JobID      string    `json:"jobId"`
	EmployeeID string    `json:"employeeId"`
	CoverNote  string    `json:"coverNote,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}
