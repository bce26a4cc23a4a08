package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	teamRepo      repositories.TeamRepository
	candidateRepo repositories.CandidateRepository
	eventRepo     repositories.EventRepository
}

func NewDashboardService(
	teamRepo repositories.TeamRepository,
	candidateRepo repositories.CandidateRepository,
	eventRepo repositories.EventRepository,
) DashboardService {
	return &dashboardService{
		teamRepo:      teamRepo,
		candidateRepo: candidateRepo,
		eventRepo:     eventRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.teamRepo.Count(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count teams: %w", err)
		}
		stats.TeamsTotal = n
		return nil
	})
	g.Go(func() error {
		n, err := s.candidateRepo.Count(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count candidates: %w", err)
		}
		stats.CandidatesTotal = n
		return nil
	})
	g.Go(func() error {
		n, err := s.eventRepo.Count(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count events: %w", err)
		}
		stats.EventsTotal = n
		return nil
	})
	g.Go(func() error {
		n, err := s.eventRepo.CountCategories(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		stats.CategoriesTotal = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
