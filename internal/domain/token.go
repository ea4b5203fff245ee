package domain

import "time"

type TokenPurpose string

const (
	PurposeVerification  TokenPurpose = "verification"
	PurposePasswordReset TokenPurpose = "password_reset"
)

const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
)

// TTL returns how long a token issued for p stays usable.
func (p TokenPurpose) TTL() time.Duration {
	if p == PurposePasswordReset {
		return ResetTokenTTL
	}
	return VerificationTokenTTL
}

// EphemeralToken is a one-time credential for out-of-band flows. Only the
// SHA-256 hash of the raw value is ever stored.
type EphemeralToken struct {
	ID        string
	UserID    string
	Purpose   TokenPurpose
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (t *EphemeralToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
