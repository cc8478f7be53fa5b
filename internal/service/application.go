package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/pkg/idx"
)

// ApplicationService handles applying to postings and the employer's review
// of applications.
type ApplicationService struct {
	Store store.Store
}

// Apply submits an application. One application per employee per job.
func (s *ApplicationService) Apply(ctx context.Context, employeeID, jobID, coverNote string) (domain.Application, error) {
	if _, err := s.Store.Jobs().GetJobByID(ctx, jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Application{}, domain.ErrNotFoundGeneric
		}
		return domain.Application{}, err
	}

	app := domain.Application{
		ID:         idx.New().String(),
		JobID:      jobID,
		EmployeeID: employeeID,
		CoverNote:  strings.TrimSpace(coverNote),
		Status:     domain.ApplicationPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Store.Applications().CreateApplication(ctx, app); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Application{}, domain.ErrAlreadyApplied
		}
		return domain.Application{}, err
	}
	return app, nil
}

// ListForJob returns a posting's applications to its owner or an admin.
func (s *ApplicationService) ListForJob(ctx context.Context, actor domain.Principal, jobID string) ([]domain.Application, error) {
	job, err := s.Store.Jobs().GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrNotFoundGeneric
		}
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && actor.ID != job.EmployerID {
		return nil, domain.ErrInsufficientRole
	}

	return s.Store.Applications().ListByJob(ctx, jobID)
}

// ListMine returns the caller's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, employeeID string) ([]domain.Application, error) {
	return s.Store.Applications().ListByEmployee(ctx, employeeID)
}

// UpdateStatus moves an application to reviewed or rejected. Only the
// posting's owner or an admin may review.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor domain.Principal, appID, status string) (domain.Application, error) {
	if status != domain.ApplicationReviewed && status != domain.ApplicationRejected {
		return domain.Application{}, domain.ErrValidation.WithDetail("status must be %q or %q", domain.ApplicationReviewed, domain.ApplicationRejected)
	}

	app, err := s.Store.Applications().GetApplicationByID(ctx, appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Application{}, domain.ErrNotFoundGeneric
		}
		return domain.Application{}, err
	}

	job, err := s.Store.Jobs().GetJobByID(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Application{}, domain.ErrNotFoundGeneric
		}
		return domain.Application{}, err
	}
	if actor.Role != domain.RoleAdmin && actor.ID != job.EmployerID {
		return domain.Application{}, domain.ErrInsufficientRole
	}

	if err := s.Store.Applications().UpdateStatus(ctx, appID, status); err != nil {
		return domain.Application{}, err
	}
	app.Status = status
	return app, nil
}
