package domain

import (
	"strings"
	"time"
)

// Role values a user can hold. Only employee and employer are
// self-registerable; admin is assigned out of band.
const (
	RoleEmployee = "employee"
	RoleEmployer = "employer"
	RoleAdmin    = "admin"
)

// NormalizeSignupRole maps arbitrary input to one of the two
// self-registerable roles, defaulting to the least privileged. Admin can
// never be requested through a signup path.
func NormalizeSignupRole(role string) string {
	if strings.TrimSpace(strings.ToLower(role)) == RoleEmployer {
		return RoleEmployer
	}
	return RoleEmployee
}

// NormalizeEmail lower-cases and trims an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type User struct {
	ID           string
	Name         string
	Email        string // stored normalized (lower-cased, trimmed)
	PasswordHash string // argon2id encoded
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the wire representation of a user, without credentials.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}
