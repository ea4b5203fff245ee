package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/gin-gonic/gin"
)

type adminUsecaser interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type AdminHandler struct {
	uc     adminUsecaser
	logger *slog.Logger
}

func NewAdminHandler(uc adminUsecaser, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, logger: logger.With("component", "admin_handler")}
}

type listUsersResponse struct {
	Users []domain.PublicUser `json:"users"`
	Count int                 `json:"count"`
}

// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "list users", err)
		return
	}

	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, listUsersResponse{Users: out, Count: len(out)})
}

// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, "delete user", err)
		return
	}
	h.logger.InfoContext(c.Request.Context(), "user deleted", "target_user_id", id)
	c.JSON(http.StatusOK, messageResponse{Message: "User deleted"})
}
