package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type profileUsecaser interface {
	Profile(ctx context.Context, id domain.Identity) (*domain.User, error)
	UpdateProfile(ctx context.Context, id domain.Identity, upd domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, id domain.Identity, oldPassword, newPassword string) error
}

type UserHandler struct {
	uc     profileUsecaser
	logger *slog.Logger
}

func NewUserHandler(uc profileUsecaser, logger *slog.Logger) *UserHandler {
	return &UserHandler{uc: uc, logger: logger.With("component", "user_handler")}
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Bio   *string `json:"bio"`
	Photo *string `json:"photo"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// GET /api/v1/profile
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	user, err := h.uc.Profile(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// PATCH /api/v1/profile
// Only the fields present in the body change.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}

	user, err := h.uc.UpdateProfile(c.Request.Context(), id, domain.ProfileUpdate{
		Name:  req.Name,
		Bio:   req.Bio,
		Photo: req.Photo,
	})
	if err != nil {
		writeError(c, h.logger, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// PATCH /api/v1/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}

	if err := h.uc.ChangePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		writeError(c, h.logger, "change password", err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully"})
}
