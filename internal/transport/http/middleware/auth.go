package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/reqctx"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the session credential.
const SessionCookie = "token"

const (
	errUnauthorized = "You are not logged in"
	errUserNotFound = "User not found"
	errForbidden    = "You do not have permission to perform this action"
	errInternal     = "Internal server error"

	identityKey = "identity"
)

type sessionVerifier interface {
	Verify(token string) (string, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticate resolves the session cookie to a stored user and sets the
// caller's Identity in the gin context. The user is re-loaded on every
// request so role changes and deletions take effect immediately.
func Authenticate(sessions sessionVerifier, users userFinder, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_gate")
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		userID, err := sessions.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		ctx := c.Request.Context()
		user, err := users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
				return
			}
			logger.ErrorContext(ctx, "load session user", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errInternal})
			return
		}

		SetIdentity(c, user.Identity())
		c.Request = c.Request.WithContext(reqctx.WithUserID(ctx, user.ID))
		c.Next()
	}
}

// SetIdentity records the resolved caller on c.
func SetIdentity(c *gin.Context, id domain.Identity) {
	c.Set(identityKey, id)
	c.Set("userID", id.UserID)
}

// IdentityFrom returns the caller resolved by Authenticate.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// RequireRole must run after Authenticate. It passes only callers whose
// current role is one of roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}
		if !slices.Contains(roles, id.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

func CreatorOrAdmin() gin.HandlerFunc {
	return RequireRole(domain.RoleCreator, domain.RoleAdmin)
}
