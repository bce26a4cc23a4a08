package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/utils"
)

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	repo := newFakeUserRepo(
		models.User{ID: 1, Email: "admin@fest.local", PasswordHash: hash, Role: models.RoleAdmin},
		models.User{ID: 2, Email: "viewer@fest.local", PasswordHash: hash, Role: models.RoleViewer},
	)
	svc := NewAuthService(repo, discardLogger())
	ctx := context.Background()

	user, err := svc.Login(ctx, LoginInput{Email: "ADMIN@fest.local", Password: "correct horse"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if user.ID != 1 || user.PasswordHash != "" {
		t.Errorf("user = %+v", user)
	}

	tests := []struct {
		name  string
		input LoginInput
		want  error
	}{
		{"wrong password", LoginInput{Email: "admin@fest.local", Password: "nope"}, ErrAuthInvalidCredentials},
		{"unknown email", LoginInput{Email: "ghost@fest.local", Password: "correct horse"}, ErrAuthInvalidCredentials},
		{"empty", LoginInput{}, ErrAuthInvalidCredentials},
		{"not an admin", LoginInput{Email: "viewer@fest.local", Password: "correct horse"}, ErrAdminAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	repo := newFakeUserRepo(models.User{ID: 1, Email: "old@fest.local", PasswordHash: "x", Role: models.RoleViewer})
	svc := NewAuthService(repo, discardLogger())
	ctx := context.Background()

	promoted, err := svc.EnsureAdmin(ctx, "old@fest.local", "")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != models.RoleAdmin || repo.users[1].Role != models.RoleAdmin {
		t.Errorf("user 1 not promoted: %+v", repo.users[1])
	}
	if repo.users[1].PasswordHash != "x" {
		t.Error("existing password hash was replaced")
	}

	if _, err := svc.EnsureAdmin(ctx, "new@fest.local", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("short password: got %v", err)
	}
	if _, err := svc.EnsureAdmin(ctx, "not-an-email", "long enough"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email: got %v", err)
	}

	created, err := svc.EnsureAdmin(ctx, "new@fest.local", "long enough")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored := repo.users[created.ID]
	if stored.Role != models.RoleAdmin || !utils.CheckPasswordHash("long enough", stored.PasswordHash) {
		t.Errorf("stored admin = %+v", stored)
	}
}
