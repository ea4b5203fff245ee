package repository

import (
	"context"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
)

// UserRepository is the Credential Store. Lookups that feed the access gate
// never return the password hash; only FindByEmail and FindCredentials do.
type UserRepository interface {
	// Create persists u, whose PasswordHash must already be hashed.
	// Returns domain.ErrEmailTaken when the email is in use.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindCredentials(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	// UpdatePassword stores an already-hashed password. Profile updates never
	// touch the hash, so nothing is hashed twice.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// MarkVerified flips is_verified once. Returns domain.ErrAlreadyVerified
	// if it was already set.
	MarkVerified(ctx context.Context, id string) (*domain.User, error)
	SetRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}
