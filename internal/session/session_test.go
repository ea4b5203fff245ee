package session_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("session-test-secret-at-least-32-chars")

func TestIssueVerify_RoundTrip(t *testing.T) {
	iss := session.NewIssuer(testKey)

	tok, exp, err := iss.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	userID, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerify_Expired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	iss := session.NewIssuer(testKey, session.WithClock(func() time.Time { return clock() }))

	tok, _, err := iss.Issue("user-1")
	require.NoError(t, err)

	clock = func() time.Time { return now.Add(24*time.Hour + time.Minute) }
	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_WrongKey(t *testing.T) {
	tok, _, err := session.NewIssuer([]byte("another-secret-that-is-32-chars!!")).Issue("user-1")
	require.NoError(t, err)

	_, err = session.NewIssuer(testKey).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_Tampered(t *testing.T) {
	iss := session.NewIssuer(testKey)
	tok, _, err := iss.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	forged, _, err := session.NewIssuer(testKey).Issue("admin-1")
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	// Swap payloads while keeping the original signature.
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = iss.Verify(tampered)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_RejectsMalformedAndUnsigned(t *testing.T) {
	iss := session.NewIssuer(testKey)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", "a.b.c", none} {
		_, err := iss.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, "token %q", tok)
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
	tok, err := noExp.SignedString(testKey)
	require.NoError(t, err)

	_, err = session.NewIssuer(testKey).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_MissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)

	_, err = session.NewIssuer(testKey).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestWithTTL(t *testing.T) {
	iss := session.NewIssuer(testKey, session.WithTTL(time.Hour))
	assert.Equal(t, time.Hour, iss.TTL())

	_, exp, err := iss.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}
