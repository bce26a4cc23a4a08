package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/repositories"
	"github.com/Dosada05/fest-portal/storage"
)

type CandidateService interface {
	CreateCandidate(ctx context.Context, input CreateCandidateInput) (*models.Candidate, error)
	GetCandidateByID(ctx context.Context, id int) (*models.Candidate, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	UpdateCandidate(ctx context.Context, id int, input UpdateCandidateInput) (*models.Candidate, error)
	DeleteCandidate(ctx context.Context, id int) error
	UploadPhoto(ctx context.Context, id int, file io.Reader, contentType string) (*models.Candidate, error)
}

type CreateCandidateInput struct {
	Name   string `json:"name"`
	TeamID int    `json:"team_id"`
}

type UpdateCandidateInput struct {
	Name   *string `json:"name"`
	TeamID *int    `json:"team_id"`
}

type candidateService struct {
	candidateRepo repositories.CandidateRepository
	teamRepo      repositories.TeamRepository
	resultRepo    repositories.ResultRepository
	uploader      storage.FileUploader
	logger        *slog.Logger
}

func NewCandidateService(
	candidateRepo repositories.CandidateRepository,
	teamRepo repositories.TeamRepository,
	resultRepo repositories.ResultRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) CandidateService {
	return &candidateService{
		candidateRepo: candidateRepo,
		teamRepo:      teamRepo,
		resultRepo:    resultRepo,
		uploader:      uploader,
		logger:        logger,
	}
}

func mapCandidateRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrCandidateNotFound):
		return ErrCandidateNotFound
	case errors.Is(err, repositories.ErrCandidateTeamInvalid):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrCandidateInUse):
		return ErrCandidateInUse
	}
	return nil
}

func (s *candidateService) requireTeam(ctx context.Context, teamID int) (*models.Team, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team_id is required", ErrValidationFailed)
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}

func (s *candidateService) CreateCandidate(ctx context.Context, input CreateCandidateInput) (*models.Candidate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCandidateNameRequired
	}
	team, err := s.requireTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}

	candidate := &models.Candidate{Name: name, TeamID: team.ID}
	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		if mapped := mapCandidateRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	candidate.Team = &models.Team{ID: team.ID, Name: team.Name}
	return candidate, nil
}

func (s *candidateService) GetCandidateByID(ctx context.Context, id int) (*models.Candidate, error) {
	candidate, err := s.candidateRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapCandidateRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get candidate %d: %w", id, err)
	}
	populateCandidatePhotoURL(candidate, s.uploader)
	return candidate, nil
}

func (s *candidateService) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	candidates, err := s.candidateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	if candidates == nil {
		return []models.Candidate{}, nil
	}
	for i := range candidates {
		populateCandidatePhotoURL(&candidates[i], s.uploader)
	}
	return candidates, nil
}

func (s *candidateService) UpdateCandidate(ctx context.Context, id int, input UpdateCandidateInput) (*models.Candidate, error) {
	candidate, err := s.candidateRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapCandidateRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get candidate %d: %w", id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCandidateNameRequired
		}
		candidate.Name = name
	}
	if input.TeamID != nil && *input.TeamID != candidate.TeamID {
		team, err := s.requireTeam(ctx, *input.TeamID)
		if err != nil {
			return nil, err
		}
		// Результаты участника остались бы записаны на старую команду
		hasResults, err := s.resultRepo.ExistsForCandidate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check results of candidate %d: %w", id, err)
		}
		if hasResults {
			return nil, fmt.Errorf("%w: move or delete its results first", ErrCandidateInUse)
		}
		candidate.TeamID = team.ID
		candidate.Team = &models.Team{ID: team.ID, Name: team.Name}
	}

	if err := s.candidateRepo.Update(ctx, candidate); err != nil {
		if mapped := mapCandidateRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update candidate %d: %w", id, err)
	}
	populateCandidatePhotoURL(candidate, s.uploader)
	return candidate, nil
}

func (s *candidateService) DeleteCandidate(ctx context.Context, id int) error {
	candidate, err := s.candidateRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapCandidateRepoError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to get candidate %d: %w", id, err)
	}
	if err := s.candidateRepo.Delete(ctx, id); err != nil {
		if mapped := mapCandidateRepoError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to delete candidate %d: %w", id, err)
	}
	deleteObjectQuietly(ctx, s.uploader, s.logger, candidate.PhotoKey)
	return nil
}

func (s *candidateService) UploadPhoto(ctx context.Context, id int, file io.Reader, contentType string) (*models.Candidate, error) {
	if !storage.IsAllowedImageType(contentType) {
		return nil, ErrUnsupportedPhotoType
	}
	candidate, err := s.candidateRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapCandidateRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get candidate %d: %w", id, err)
	}

	key := storage.PhotoKey(fmt.Sprintf("candidates/%d", id), contentType)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil, ErrPhotoStorageDisabled
		}
		return nil, fmt.Errorf("failed to upload candidate photo: %w", err)
	}
	if err := s.candidateRepo.UpdatePhotoKey(ctx, id, &key); err != nil {
		deleteObjectQuietly(ctx, s.uploader, s.logger, &key)
		if mapped := mapCandidateRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to save candidate photo key: %w", err)
	}

	deleteObjectQuietly(ctx, s.uploader, s.logger, candidate.PhotoKey)
	candidate.PhotoKey = &key
	populateCandidatePhotoURL(candidate, s.uploader)
	return candidate, nil
}
