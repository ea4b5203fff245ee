package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errInvalidBody        = "Invalid request body"
	errEmailTaken         = "User with this email already exists"
	errUserNotFound       = "User not found"
	errInvalidCredentials = "Invalid credentials"
	errSamePassword       = "New password cannot be the same as the old password"
	errAlreadyVerified    = "User is already verified"
	errUnauthorized       = "You are not logged in"
	errForbidden          = "You do not have permission to perform this action"
	errTokenInvalid       = "Token is invalid or has already been used"
	errTokenExpired       = "Token has expired"
	errEmailDelivery      = "Email could not be sent, please try again"
)

// writeError maps err onto a status and a client-facing message. Only
// unexpected failures are logged; their detail never reaches the client.
func writeError(c *gin.Context, logger *slog.Logger, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmailTaken})
	case errors.Is(err, domain.ErrSamePassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": errSamePassword})
	case errors.Is(err, domain.ErrAlreadyVerified):
		c.JSON(http.StatusBadRequest, gin.H{"error": errAlreadyVerified})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCredentials})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
	case errors.Is(err, domain.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenExpired})
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrEmailDelivery):
		logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errEmailDelivery})
	default:
		logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
