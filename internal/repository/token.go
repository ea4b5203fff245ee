package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
)

// TokenRepository is the Ephemeral Token Store, keyed by (user, purpose).
type TokenRepository interface {
	// Replace stores t as the only live token for its user and purpose,
	// superseding any previous one in a single statement.
	Replace(ctx context.Context, t *domain.EphemeralToken) error

	// Claim atomically removes and returns the token with the given hash and
	// purpose. Returns domain.ErrTokenInvalid when none exists. Expiry is
	// checked by the caller so expired tokens can be reported as such.
	Claim(ctx context.Context, tokenHash string, purpose domain.TokenPurpose) (*domain.EphemeralToken, error)

	// DeleteExpired purges tokens whose expires_at is before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
