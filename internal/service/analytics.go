package service

import (
	"context"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/store"
)

// AnalyticsService aggregates counts for the admin dashboard.
type AnalyticsService struct {
	Store store.Store
}

func (s *AnalyticsService) Stats(ctx context.Context) (domain.Stats, error) {
	usersByRole, err := s.Store.Users().CountByRole(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	jobs, err := s.Store.Jobs().Count(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	applications, err := s.Store.Applications().Count(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		UsersByRole:  usersByRole,
		Jobs:         jobs,
		Applications: applications,
	}, nil
}
