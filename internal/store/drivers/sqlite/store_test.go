package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/internal/store/drivers/sqlite"
	"github.com/hireline/hireline/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestUser(role string) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	id := idx.New().String()
	return domain.User{
		ID:           id,
		Name:         "Test " + id[:6],
		Email:        domain.NormalizeEmail(id + "@example.com"),
		PasswordHash: "$argon2id$fake",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUsersRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(domain.RoleEmployee)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	t.Run("get by id", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, got.Email)
		require.Equal(t, domain.RoleEmployee, got.Role)
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, u.Email)
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email is ErrAlreadyExists", func(t *testing.T) {
		dup := newTestUser(domain.RoleEmployee)
		dup.Email = u.Email
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update role", func(t *testing.T) {
		require.NoError(t, s.Users().UpdateRole(ctx, u.ID, domain.RoleAdmin))
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, got.Role)
	})

	t.Run("count by role", func(t *testing.T) {
		require.NoError(t, s.Users().CreateUser(ctx, newTestUser(domain.RoleEmployer)))
		counts, err := s.Users().CountByRole(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, counts[domain.RoleAdmin])
		require.Equal(t, 1, counts[domain.RoleEmployer])
	})
}

func newTestJob(employerID string) domain.Job {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Job{
		ID:          idx.New().String(),
		EmployerID:  employerID,
		Title:       "Backend Engineer",
		Company:     "Acme",
		Location:    "Remote",
		Description: "Build things",
		Salary:      "100k",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestJobsRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	employer := newTestUser(domain.RoleEmployer)
	require.NoError(t, s.Users().CreateUser(ctx, employer))

	j := newTestJob(employer.ID)
	require.NoError(t, s.Jobs().CreateJob(ctx, j))

	t.Run("get by id", func(t *testing.T) {
		got, err := s.Jobs().GetJobByID(ctx, j.ID)
		require.NoError(t, err)
		require.Equal(t, "Backend Engineer", got.Title)
	})

	t.Run("list with search filter", func(t *testing.T) {
		other := newTestJob(employer.ID)
		other.Title = "Gardener"
		require.NoError(t, s.Jobs().CreateJob(ctx, other))

		jobs, err := s.Jobs().ListJobs(ctx, store.JobFilter{Search: "backend"})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		require.Equal(t, j.ID, jobs[0].ID)
	})

	t.Run("list by employer", func(t *testing.T) {
		jobs, err := s.Jobs().ListJobs(ctx, store.JobFilter{EmployerID: employer.ID})
		require.NoError(t, err)
		require.Len(t, jobs, 2)
	})

	t.Run("update", func(t *testing.T) {
		j.Title = "Staff Engineer"
		require.NoError(t, s.Jobs().UpdateJob(ctx, j))
		got, err := s.Jobs().GetJobByID(ctx, j.ID)
		require.NoError(t, err)
		require.Equal(t, "Staff Engineer", got.Title)
	})

	t.Run("update missing is ErrNotFound", func(t *testing.T) {
		missing := newTestJob(employer.ID)
		missing.ID = "nope"
		require.ErrorIs(t, s.Jobs().UpdateJob(ctx, missing), store.ErrNotFound)
	})

	t.Run("delete cascades to applications", func(t *testing.T) {
		employee := newTestUser(domain.RoleEmployee)
		require.NoError(t, s.Users().CreateUser(ctx, employee))
		app := domain.Application{
			ID: idx.New().String(), JobID: j.ID, EmployeeID: employee.ID,
			Status: domain.ApplicationPending, CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, s.Applications().CreateApplication(ctx, app))

		require.NoError(t, s.Jobs().DeleteJob(ctx, j.ID))
		_, err := s.Applications().GetApplicationByID(ctx, app.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestApplicationsRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	employer := newTestUser(domain.RoleEmployer)
	employee := newTestUser(domain.RoleEmployee)
	require.NoError(t, s.Users().CreateUser(ctx, employer))
	require.NoError(t, s.Users().CreateUser(ctx, employee))

	j := newTestJob(employer.ID)
	require.NoError(t, s.Jobs().CreateJob(ctx, j))

	app := domain.Application{
		ID: idx.New().String(), JobID: j.ID, EmployeeID: employee.ID,
		CoverNote: "hi", Status: domain.ApplicationPending,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.Applications().CreateApplication(ctx, app))

	t.Run("double apply is ErrAlreadyExists", func(t *testing.T) {
		dup := app
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Applications().CreateApplication(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("list by job", func(t *testing.T) {
		apps, err := s.Applications().ListByJob(ctx, j.ID)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		require.Equal(t, domain.ApplicationPending, apps[0].Status)
	})

	t.Run("list by employee", func(t *testing.T) {
		apps, err := s.Applications().ListByEmployee(ctx, employee.ID)
		require.NoError(t, err)
		require.Len(t, apps, 1)
	})

	t.Run("update status", func(t *testing.T) {
		require.NoError(t, s.Applications().UpdateStatus(ctx, app.ID, domain.ApplicationReviewed))
		got, err := s.Applications().GetApplicationByID(ctx, app.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ApplicationReviewed, got.Status)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(domain.RoleEmployee)
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return context.Canceled // force rollback
	})
	require.Error(t, err)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
