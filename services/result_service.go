package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/repositories"
)

type ResultService interface {
	CreateResult(ctx context.Context, input CreateResultInput) (*models.Result, error)
	GetResultByID(ctx context.Context, id int) (*models.Result, error)
	ListResults(ctx context.Context) ([]models.Result, error)
	UpdateResult(ctx context.Context, id int, input UpdateResultInput) (*models.Result, error)
	DeleteResult(ctx context.Context, id int) error
}

type CreateResultInput struct {
	EventID     int  `json:"event_id"`
	TeamID      int  `json:"team_id"`
	CandidateID *int `json:"candidate_id"`
	Position    int  `json:"position"`
	Points      int  `json:"points"`
}

// UpdateResultInput: CandidateID = 0 отвязывает участника.
type UpdateResultInput struct {
	EventID     *int `json:"event_id"`
	TeamID      *int `json:"team_id"`
	CandidateID *int `json:"candidate_id"`
	Position    *int `json:"position"`
	Points      *int `json:"points"`
}

type resultService struct {
	resultRepo    repositories.ResultRepository
	eventRepo     repositories.EventRepository
	teamRepo      repositories.TeamRepository
	candidateRepo repositories.CandidateRepository
}

func NewResultService(
	resultRepo repositories.ResultRepository,
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	candidateRepo repositories.CandidateRepository,
) ResultService {
	return &resultService{
		resultRepo:    resultRepo,
		eventRepo:     eventRepo,
		teamRepo:      teamRepo,
		candidateRepo: candidateRepo,
	}
}

func mapResultRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrResultNotFound):
		return ErrResultNotFound
	case errors.Is(err, repositories.ErrResultEventInvalid):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrResultTeamInvalid):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrResultCandidateInvalid):
		return ErrCandidateNotFound
	case errors.Is(err, repositories.ErrResultValueInvalid):
		return ErrValidationFailed
	}
	return nil
}

// validate проверяет значения и ссылки результата и заполняет связанные сущности.
func (s *resultService) validate(ctx context.Context, result *models.Result) error {
	if result.Position < 1 {
		return ErrResultPositionInvalid
	}
	if result.Points < 0 {
		return ErrResultPointsInvalid
	}
	if result.EventID <= 0 {
		return ErrResultEventRequired
	}
	if result.TeamID <= 0 {
		return ErrResultTeamRequired
	}

	event, err := s.eventRepo.GetByID(ctx, result.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event %d: %w", result.EventID, err)
	}
	team, err := s.teamRepo.GetByID(ctx, result.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", result.TeamID, err)
	}
	result.Event = &models.Event{ID: event.ID, Name: event.Name}
	result.Team = &models.Team{ID: team.ID, Name: team.Name}
	result.Candidate = nil

	if result.CandidateID == nil {
		return nil
	}
	candidate, err := s.candidateRepo.GetByID(ctx, *result.CandidateID)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return ErrCandidateNotFound
		}
		return fmt.Errorf("failed to get candidate %d: %w", *result.CandidateID, err)
	}
	if candidate.TeamID != result.TeamID {
		return ErrCandidateTeamMismatch
	}
	result.Candidate = &models.Candidate{ID: candidate.ID, Name: candidate.Name, TeamID: candidate.TeamID}
	return nil
}

func (s *resultService) CreateResult(ctx context.Context, input CreateResultInput) (*models.Result, error) {
	result := &models.Result{
		EventID:     input.EventID,
		TeamID:      input.TeamID,
		CandidateID: input.CandidateID,
		Position:    input.Position,
		Points:      input.Points,
	}
	if result.CandidateID != nil && *result.CandidateID == 0 {
		result.CandidateID = nil
	}
	if err := s.validate(ctx, result); err != nil {
		return nil, err
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		if mapped := mapResultRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create result: %w", err)
	}
	return result, nil
}

func (s *resultService) GetResultByID(ctx context.Context, id int) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapResultRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get result %d: %w", id, err)
	}
	return result, nil
}

func (s *resultService) ListResults(ctx context.Context) ([]models.Result, error) {
	results, err := s.resultRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if results == nil {
		return []models.Result{}, nil
	}
	return results, nil
}

func (s *resultService) UpdateResult(ctx context.Context, id int, input UpdateResultInput) (*models.Result, error) {
	result, err := s.GetResultByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.EventID != nil {
		result.EventID = *input.EventID
	}
	if input.TeamID != nil {
		result.TeamID = *input.TeamID
	}
	if input.CandidateID != nil {
		if *input.CandidateID == 0 {
			result.CandidateID = nil
		} else {
			candidateID := *input.CandidateID
			result.CandidateID = &candidateID
		}
	}
	if input.Position != nil {
		result.Position = *input.Position
	}
	if input.Points != nil {
		result.Points = *input.Points
	}

	if err := s.validate(ctx, result); err != nil {
		return nil, err
	}
	if err := s.resultRepo.Update(ctx, result); err != nil {
		if mapped := mapResultRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update result %d: %w", id, err)
	}
	return result, nil
}

func (s *resultService) DeleteResult(ctx context.Context, id int) error {
	if err := s.resultRepo.Delete(ctx, id); err != nil {
		if mapped := mapResultRepoError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to delete result %d: %w", id, err)
	}
	return nil
}
