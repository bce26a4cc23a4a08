package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/fest-portal/models"
)

// StandingsProvider отдаёт последний посчитанный лидерборд и умеет пересчитать его.
// Реализуется leaderboard.Refresher.
type StandingsProvider interface {
	Current() (models.StandingsSnapshot, bool)
	Refresh(ctx context.Context) (models.StandingsSnapshot, error)
}

type StandingsService interface {
	GetStandings(ctx context.Context) (models.StandingsSnapshot, error)
	RecomputeStandings(ctx context.Context) (models.StandingsSnapshot, error)
}

type standingsService struct {
	provider StandingsProvider
}

func NewStandingsService(provider StandingsProvider) StandingsService {
	return &standingsService{provider: provider}
}

// GetStandings never returns an empty list in place of a failure: with no
// snapshot computed yet it refreshes, and if that fails the standings are unknown.
func (s *standingsService) GetStandings(ctx context.Context) (models.StandingsSnapshot, error) {
	if snap, ok := s.provider.Current(); ok {
		return snap, nil
	}
	return s.RecomputeStandings(ctx)
}

func (s *standingsService) RecomputeStandings(ctx context.Context) (models.StandingsSnapshot, error) {
	snap, err := s.provider.Refresh(ctx)
	if err != nil {
		return models.StandingsSnapshot{}, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}
	return snap, nil
}
