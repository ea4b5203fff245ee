package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/metrics"
	"github.com/ErlanBelekov/user-accounts/internal/password"
	"github.com/ErlanBelekov/user-accounts/internal/repository"
	"github.com/google/uuid"
)

// AdminUsecase holds privileged operations. Role checks happen in the
// access gate before these are reached.
type AdminUsecase struct {
	users  repository.UserRepository
	hasher password.Hasher
}

func NewAdminUsecase(users repository.UserRepository, hasher password.Hasher) *AdminUsecase {
	return &AdminUsecase{users: users, hasher: hasher}
}

func (u *AdminUsecase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser hard-deletes the account and, through the store, its tokens.
func (u *AdminUsecase) DeleteUser(ctx context.Context, id string) (err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("delete_user", metrics.Outcome(err)).Inc() }()

	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrUserNotFound
	}
	if err := u.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// EnsureAdmin creates an admin account for emailAddr, or promotes the
// existing account. The password is only set when the account is created.
func (u *AdminUsecase) EnsureAdmin(ctx context.Context, name, emailAddr, plaintext string) (*domain.User, bool, error) {
	addr := normalizeEmail(emailAddr)

	existing, err := u.users.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		if err := u.users.SetRole(ctx, existing.ID, domain.RoleAdmin); err != nil {
			return nil, false, fmt.Errorf("promote user: %w", err)
		}
		existing.Role = domain.RoleAdmin
		existing.PasswordHash = ""
		return existing, false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, fmt.Errorf("find user by email: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	if err := checkPassword(plaintext); err != nil {
		return nil, false, err
	}
	hash, err := u.hasher.Hash(plaintext)
	if err != nil {
		return nil, false, err
	}

	created, err := u.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        addr,
		PasswordHash: hash,
		Photo:        domain.DefaultPhoto,
		Bio:          domain.DefaultBio,
		Role:         domain.RoleAdmin,
		IsVerified:   true,
	})
	if err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return created, true, nil
}
