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

// JobInput carries the writable fields of a posting.
type JobInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Salary      string `json:"salary"`
}

func (in JobInput) validate() error {
	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Company) == "" ||
		strings.TrimSpace(in.Location) == "" ||
		strings.TrimSpace(in.Description) == "" {
		return domain.ErrValidation.WithDetail("title, company, location and description are required")
	}
	return nil
}

// JobService implements posting CRUD. Writes are employer-scoped: only the
// posting's owner or an admin may mutate it.
type JobService struct {
	Store store.Store
}

func (s *JobService) Create(ctx context.Context, employerID string, in JobInput) (domain.Job, error) {
	if err := in.validate(); err != nil {
		return domain.Job{}, err
	}

	now := time.Now().UTC()
	job := domain.Job{
		ID:          idx.New().String(),
		EmployerID:  employerID,
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		Salary:      strings.TrimSpace(in.Salary),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Jobs().CreateJob(ctx, job); err != nil {
		return domain.Job{}, err
	}
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id string) (domain.Job, error) {
	job, err := s.Store.Jobs().GetJobByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Job{}, domain.ErrNotFoundGeneric
		}
		return domain.Job{}, err
	}
	return job, nil
}

func (s *JobService) List(ctx context.Context, f store.JobFilter) ([]domain.Job, error) {
	return s.Store.Jobs().ListJobs(ctx, f)
}

func (s *JobService) Update(ctx context.Context, actor domain.Principal, id string, in JobInput) (domain.Job, error) {
	if err := in.validate(); err != nil {
		return domain.Job{}, err
	}

	job, err := s.Get(ctx, id)
	if err != nil {
		return domain.Job{}, err
	}
	if err := s.authorizeOwner(actor, job); err != nil {
		return domain.Job{}, err
	}

	job.Title = strings.TrimSpace(in.Title)
	job.Company = strings.TrimSpace(in.Company)
	job.Location = strings.TrimSpace(in.Location)
	job.Description = in.Description
	job.Salary = strings.TrimSpace(in.Salary)
	job.UpdatedAt = time.Now().UTC()

	if err := s.Store.Jobs().UpdateJob(ctx, job); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Job{}, domain.ErrNotFoundGeneric
		}
		return domain.Job{}, err
	}
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(actor, job); err != nil {
		return err
	}

	if err := s.Store.Jobs().DeleteJob(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrNotFoundGeneric
		}
		return err
	}
	return nil
}

func (s *JobService) authorizeOwner(actor domain.Principal, job domain.Job) error {
	if actor.Role == domain.RoleAdmin || actor.ID == job.EmployerID {
		return nil
	}
	return domain.ErrInsufficientRole
}
