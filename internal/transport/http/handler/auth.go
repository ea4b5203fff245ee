package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/transport/http/middleware"
	"github.com/ErlanBelekov/user-accounts/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	LoginStatus(sessionToken string) bool
	RequestVerification(ctx context.Context, id domain.Identity) error
	VerifyEmail(ctx context.Context, rawToken string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

type AuthHandler struct {
	authUsecase authUsecaser
	sessionTTL  time.Duration
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, sessionTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		sessionTTL:  sessionTTL,
		logger:      logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// POST /api/v1/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}

	res, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.logger, "register", err)
		return
	}

	h.setSession(c, res.Token)
	c.JSON(http.StatusCreated, authResponse{User: res.User.Public(), Token: res.Token})
}

// POST /api/v1/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}

	res, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, "login", err)
		return
	}

	h.setSession(c, res.Token)
	c.JSON(http.StatusOK, authResponse{User: res.User.Public(), Token: res.Token})
}

// GET /api/v1/logout
// Always succeeds, with or without an active session.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, messageResponse{Message: "User logged out"})
}

// GET /api/v1/login-status
func (h *AuthHandler) LoginStatus(c *gin.Context) {
	raw, err := c.Cookie(middleware.SessionCookie)
	if err != nil || raw == "" {
		c.JSON(http.StatusOK, false)
		return
	}
	c.JSON(http.StatusOK, h.authUsecase.LoginStatus(raw))
}

// POST /api/v1/verify-email
func (h *AuthHandler) RequestVerification(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	if err := h.authUsecase.RequestVerification(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, "request verification", err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Verification email sent"})
}

// POST /api/v1/verify-user/:verificationToken
func (h *AuthHandler) VerifyUser(c *gin.Context) {
	user, err := h.authUsecase.VerifyEmail(c.Request.Context(), c.Param("verificationToken"))
	if err != nil {
		writeError(c, h.logger, "verify user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User verified successfully", "user": user.Public()})
}

// POST /api/v1/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}

	if err := h.authUsecase.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, "forgot password", err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Password reset link sent"})
}

// POST /api/v1/reset-password/:resetPasswordToken
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}

	if err := h.authUsecase.ResetPassword(c.Request.Context(), c.Param("resetPasswordToken"), req.Password); err != nil {
		writeError(c, h.logger, "reset password", err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Password reset successfully"})
}

func (h *AuthHandler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", true, true)
}
