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

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error
	MakeDefaultTeam(ctx context.Context, id int) (*models.Team, error)
	UploadLeaderPhoto(ctx context.Context, id int, slot models.LeaderSlot, file io.Reader, contentType string) (*models.Team, error)
}

type CreateTeamInput struct {
	Name    string  `json:"name"`
	Leader1 *string `json:"leader1"`
	Leader2 *string `json:"leader2"`
}

// UpdateTeamInput: nil поля не меняются, пустая строка у лидера очищает его.
type UpdateTeamInput struct {
	Name    *string `json:"name"`
	Leader1 *string `json:"leader1"`
	Leader2 *string `json:"leader2"`
}

type teamService struct {
	teamRepo      repositories.TeamRepository
	candidateRepo repositories.CandidateRepository
	uploader      storage.FileUploader
	logger        *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	candidateRepo repositories.CandidateRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:      teamRepo,
		candidateRepo: candidateRepo,
		uploader:      uploader,
		logger:        logger,
	}
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamInUse):
		return ErrTeamInUse
	}
	return nil
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		Name:    name,
		Leader1: optionalString(input.Leader1),
		Leader2: optionalString(input.Leader2),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if mapped := mapTeamRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapTeamRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	candidates, err := s.candidateRepo.ListByTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates of team %d: %w", id, err)
	}
	team.Candidates = candidates

	populateTeamPhotoURLs(team, s.uploader)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if teams == nil {
		return []models.Team{}, nil
	}
	for i := range teams {
		populateTeamPhotoURLs(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapTeamRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.Leader1 != nil {
		team.Leader1 = optionalString(input.Leader1)
	}
	if input.Leader2 != nil {
		team.Leader2 = optionalString(input.Leader2)
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if mapped := mapTeamRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update team %d: %w", id, err)
	}
	populateTeamPhotoURLs(team, s.uploader)
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapTeamRepoError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to get team %d: %w", id, err)
	}
	if team.IsDefault {
		return ErrDefaultTeamUndeletable
	}

	if err := s.teamRepo.Delete(ctx, id); err != nil {
		if mapped := mapTeamRepoError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}

	deleteObjectQuietly(ctx, s.uploader, s.logger, team.Leader1PhotoKey)
	deleteObjectQuietly(ctx, s.uploader, s.logger, team.Leader2PhotoKey)
	return nil
}

func (s *teamService) MakeDefaultTeam(ctx context.Context, id int) (*models.Team, error) {
	if err := s.teamRepo.SetDefault(ctx, id); err != nil {
		if mapped := mapTeamRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to make team %d default: %w", id, err)
	}
	s.logger.InfoContext(ctx, "default team changed", slog.Int("team_id", id))
	return s.GetTeamByID(ctx, id)
}

func (s *teamService) UploadLeaderPhoto(ctx context.Context, id int, slot models.LeaderSlot, file io.Reader, contentType string) (*models.Team, error) {
	if !slot.Valid() {
		return nil, ErrInvalidLeaderSlot
	}
	if !storage.IsAllowedImageType(contentType) {
		return nil, ErrUnsupportedPhotoType
	}

	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapTeamRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	key := storage.PhotoKey(fmt.Sprintf("teams/%d/leader%d", id, slot), contentType)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil, ErrPhotoStorageDisabled
		}
		return nil, fmt.Errorf("failed to upload leader photo: %w", err)
	}

	if err := s.teamRepo.UpdateLeaderPhotoKey(ctx, id, slot, &key); err != nil {
		deleteObjectQuietly(ctx, s.uploader, s.logger, &key)
		if mapped := mapTeamRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to save leader photo key: %w", err)
	}

	previous := team.Leader1PhotoKey
	if slot == models.LeaderSlotSecond {
		previous = team.Leader2PhotoKey
		team.Leader2PhotoKey = &key
	} else {
		team.Leader1PhotoKey = &key
	}
	deleteObjectQuietly(ctx, s.uploader, s.logger, previous)

	populateTeamPhotoURLs(team, s.uploader)
	return team, nil
}
