package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/storage"
)

// optionalString trims s and turns blank values into nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseEventDate(s *string) (*time.Time, error) {
	v := optionalString(s)
	if v == nil {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return nil, ErrEventDateInvalid
	}
	return &t, nil
}

func populateTeamPhotoURLs(team *models.Team, uploader storage.FileUploader) {
	if team == nil {
		return
	}
	team.Leader1PhotoURL = storage.PublicURL(uploader, team.Leader1PhotoKey)
	team.Leader2PhotoURL = storage.PublicURL(uploader, team.Leader2PhotoKey)
	for i := range team.Candidates {
		populateCandidatePhotoURL(&team.Candidates[i], uploader)
	}
}

func populateCandidatePhotoURL(c *models.Candidate, uploader storage.FileUploader) {
	if c == nil {
		return
	}
	c.PhotoURL = storage.PublicURL(uploader, c.PhotoKey)
}

// deleteObjectQuietly removes a replaced photo; failures only leave an orphan object behind.
func deleteObjectQuietly(ctx context.Context, uploader storage.FileUploader, logger *slog.Logger, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := uploader.Delete(ctx, *key); err != nil && !errors.Is(err, storage.ErrStorageDisabled) {
		logger.WarnContext(ctx, "failed to delete stored photo", slog.String("key", *key), slog.Any("error", err))
	}
}
