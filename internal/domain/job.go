package domain

import "time"

type Job struct {
	ID          string    `json:"id"`
	EmployerID  string    `json:"employerId"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Salary      string    `json:"salary,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
