package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Replace relies on UNIQUE (user_id, purpose): a concurrent second request
// for the same user and purpose overwrites rather than adds a row.
func (r *TokenRepository) Replace(ctx context.Context, t *domain.EphemeralToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_tokens (user_id, purpose, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, purpose) DO UPDATE
		SET    token_hash = EXCLUDED.token_hash,
		       created_at = EXCLUDED.created_at,
		       expires_at = EXCLUDED.expires_at`,
		t.UserID, t.Purpose, t.TokenHash, t.CreatedAt, t.ExpiresAt,
	)
	if err != nil {
		if notFound(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("replace token: %w", err)
	}
	return nil
}

// Claim deletes and returns in one statement so two concurrent consumers
// cannot both succeed.
func (r *TokenRepository) Claim(ctx context.Context, tokenHash string, purpose domain.TokenPurpose) (*domain.EphemeralToken, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM auth_tokens
		WHERE token_hash = $1 AND purpose = $2
		RETURNING id, user_id, purpose, token_hash, created_at, expires_at`,
		tokenHash, purpose,
	)

	var t domain.EphemeralToken
	err := row.Scan(&t.ID, &t.UserID, &t.Purpose, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("claim token: %w", err)
	}
	return &t, nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM auth_tokens
		WHERE id IN (
			SELECT id FROM auth_tokens
			WHERE  expires_at < $1
			ORDER BY expires_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
