package services

import (
	"errors"

	"github.com/Dosada05/fest-portal/storage"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации
	ErrValidationFailed      = errors.New("validation failed")
	ErrTeamNameRequired      = errors.New("team name is required")
	ErrCandidateNameRequired = errors.New("candidate name is required")
	ErrEventNameRequired     = errors.New("event name is required")
	ErrEventCategoryRequired = errors.New("event category is required")
	ErrEventDateInvalid      = errors.New("event date must be RFC 3339 or YYYY-MM-DD")
	ErrResultPositionInvalid = errors.New("result position must be at least 1")
	ErrResultPointsInvalid   = errors.New("result points must not be negative")
	ErrResultEventRequired   = errors.New("result event is required")
	ErrResultTeamRequired    = errors.New("result team is required")
	ErrCandidateTeamMismatch = errors.New("candidate does not belong to the result team")
	ErrInvalidLeaderSlot     = errors.New("leader slot must be 1 or 2")
	ErrUnsupportedPhotoType  = errors.New("photo must be a jpeg, png, webp or gif image")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrInvalidEmail          = errors.New("email address is invalid")

	// Конфликты
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrDefaultTeamUndeletable = errors.New("the default team cannot be deleted")
	ErrTeamInUse              = errors.New("team still has candidates or results")
	ErrEventInUse             = errors.New("event still has results")
	ErrCandidateInUse         = errors.New("candidate still has results")
	ErrUserEmailConflict      = errors.New("email address is already in use")

	// Аутентификация и доступ
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAdminAccessDenied      = errors.New("access denied: admin privileges required")

	// Сущности
	ErrUserNotFound      = errors.New("user not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrResultNotFound    = errors.New("result not found")

	ErrStandingsUnavailable = errors.New("standings are currently unknown")
	ErrPhotoStorageDisabled = storage.ErrStorageDisabled
)
