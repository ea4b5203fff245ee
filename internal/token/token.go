// Package token manages one-time verification and password-reset tokens.
//
// A raw token is 64 random bytes, hex encoded, followed by the owning user's
// id. Only its SHA-256 hash is persisted; the raw value leaves the process
// once, inside an emailed link.
package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/repository"
)

const randomBytes = 64

type Manager struct {
	repo repository.TokenRepository
	now  func() time.Time
	rand io.Reader
}

func NewManager(repo repository.TokenRepository) *Manager {
	return &Manager{repo: repo, now: time.Now, rand: rand.Reader}
}

// WithClock returns a copy of m that reads time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	c := *m
	c.now = now
	return &c
}

// Hash returns the hex SHA-256 digest stored in place of raw.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Issue creates a token for userID and purpose, superseding any previous one,
// and returns the raw value.
func (m *Manager) Issue(ctx context.Context, userID string, purpose domain.TokenPurpose) (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := io.ReadFull(m.rand, buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	raw := hex.EncodeToString(buf) + userID

	now := m.now()
	t := &domain.EphemeralToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: Hash(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(purpose.TTL()),
	}
	if err := m.repo.Replace(ctx, t); err != nil {
		return "", fmt.Errorf("store %s token: %w", purpose, err)
	}
	return raw, nil
}

// Claim consumes raw for purpose and returns the owning user id. The token is
// gone afterwards whether or not it had expired.
func (m *Manager) Claim(ctx context.Context, raw string, purpose domain.TokenPurpose) (string, error) {
	if raw == "" {
		return "", domain.ErrTokenInvalid
	}

	t, err := m.repo.Claim(ctx, Hash(raw), purpose)
	if err != nil {
		return "", err
	}
	if t.Expired(m.now()) {
		return "", domain.ErrTokenExpired
	}
	return t.UserID, nil
}
