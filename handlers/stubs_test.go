package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubTeamService struct {
	services.TeamService
	teams     map[int]models.Team
	createErr error
	deleteErr error
}

func (s *stubTeamService) ListTeams(context.Context) ([]models.Team, error) {
	out := []models.Team{}
	for _, t := range s.teams {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTeamService) GetTeamByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := s.teams[id]
	if !ok {
		return nil, services.ErrTeamNotFound
	}
	return &t, nil
}

func (s *stubTeamService) CreateTeam(_ context.Context, input services.CreateTeamInput) (*models.Team, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Team{ID: 42, Name: input.Name}, nil
}

func (s *stubTeamService) DeleteTeam(context.Context, int) error {
	return s.deleteErr
}

type stubResultService struct {
	services.ResultService
	createErr error
}

func (s *stubResultService) CreateResult(_ context.Context, input services.CreateResultInput) (*models.Result, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Result{ID: 1, EventID: input.EventID, TeamID: input.TeamID, Position: input.Position, Points: input.Points}, nil
}

type stubStandingsService struct {
	snap models.StandingsSnapshot
	err  error
}

func (s *stubStandingsService) GetStandings(context.Context) (models.StandingsSnapshot, error) {
	return s.snap, s.err
}

func (s *stubStandingsService) RecomputeStandings(context.Context) (models.StandingsSnapshot, error) {
	return s.snap, s.err
}

// slowStandingsService blocks GetStandings until release is closed.
type slowStandingsService struct {
	stubStandingsService
	entered chan struct{}
	release chan struct{}
}

func (s *slowStandingsService) GetStandings(ctx context.Context) (models.StandingsSnapshot, error) {
	close(s.entered)
	<-s.release
	return s.snap, s.err
}

type stubAuthService struct {
	services.AuthService
	users map[string]models.User
}

func (s *stubAuthService) Login(_ context.Context, input services.LoginInput) (*models.User, error) {
	u, ok := s.users[input.Email]
	if !ok || input.Password != "secret-pass" {
		return nil, services.ErrAuthInvalidCredentials
	}
	if u.Role != models.RoleAdmin {
		return nil, services.ErrAdminAccessDenied
	}
	return &u, nil
}

func (s *stubAuthService) GetUser(_ context.Context, id int) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, services.ErrUserNotFound
}
