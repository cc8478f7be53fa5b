package store

import (
	"context"
	"errors"

	"github.com/hireline/hireline/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. Sub-repositories keep concerns tidy and stop callers from
// accidentally nesting transactions.
type Store interface {
	Users() Users
	Jobs() Jobs
	Applications() Applications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back on error and
	// committing on nil. Prefer this over Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos, plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by normalized email; used for login and
	// identity-provider upsert.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateRole changes a user's role and bumps updated_at.
	UpdateRole(ctx context.Context, userID, role string) error

	// CountByRole returns user counts keyed by role, for admin stats.
	CountByRole(ctx context.Context) (map[string]int, error)
}

// JobFilter narrows ListJobs. Zero value lists everything, newest first.
type JobFilter struct {
	EmployerID string
	// Search matches title, company and location, case-insensitively.
	Search string
	Limit  int
	Offset int
}

type Jobs interface {
	// CreateJob inserts a new posting.
	CreateJob(ctx context.Context, j domain.Job) error

	// GetJobByID returns a job by id.
	GetJobByID(ctx context.Context, id string) (domain.Job, error)

	// ListJobs returns postings matching the filter, newest first.
	ListJobs(ctx context.Context, f JobFilter) ([]domain.Job, error)

	// UpdateJob rewrites the mutable fields and bumps updated_at.
	UpdateJob(ctx context.Context, j domain.Job) error

	// DeleteJob cascades to applications (per schema).
	DeleteJob(ctx context.Context, id string) error

	// Count returns the total number of postings.
	Count(ctx context.Context) (int, error)
}

type Applications interface {
	// CreateApplication inserts a new application. Returns ErrAlreadyExists
	// when the employee already applied to the job.
	CreateApplication(ctx context.Context, a domain.Application) error

	// GetApplicationByID returns an application by id.
	GetApplicationByID(ctx context.Context, id string) (domain.Application, error)

	// ListByJob returns a job's applications, newest first.
	ListByJob(ctx context.Context, jobID string) ([]domain.Application, error)

	// ListByEmployee returns an employee's applications, newest first.
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.Application, error)

	// UpdateStatus moves an application through its lifecycle.
	UpdateStatus(ctx context.Context, id, status string) error

	// Count returns the total number of applications.
	Count(ctx context.Context) (int, error)
}
