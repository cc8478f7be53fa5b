package domain

// Stats is the platform-wide snapshot served to admins.
type Stats struct {
	UsersByRole  map[string]int `json:"usersByRole"`
	Jobs         int            `json:"jobs"`
	Applications int            `json:"applications"`
}
