package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/repositories"
	"github.com/Dosada05/fest-portal/utils"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	EnsureAdmin(ctx context.Context, email, password string) (*models.User, error)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Login пускает только администраторов: остальным отвечаем отказом в доступе,
// даже если пароль верный.
func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrAuthInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}
	if user.Role != models.RoleAdmin {
		s.logger.WarnContext(ctx, "non-admin login refused", slog.Int("user_id", user.ID))
		return nil, ErrAdminAccessDenied
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// EnsureAdmin создаёт учётную запись администратора из конфигурации или
// повышает существующую до admin. Пароль существующей записи не меняется.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role != models.RoleAdmin {
			if err := s.userRepo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
				return nil, fmt.Errorf("failed to promote user %d: %w", user.ID, err)
			}
			user.Role = models.RoleAdmin
			s.logger.InfoContext(ctx, "existing user promoted to admin", slog.Int("user_id", user.ID))
		}
		user.PasswordHash = ""
		return user, nil
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if len(password) < utils.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	s.logger.InfoContext(ctx, "admin account created", slog.Int("user_id", user.ID))

	user.PasswordHash = ""
	return user, nil
}
