package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/transport/http/handler"
	"github.com/ErlanBelekov/user-accounts/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// NewRouter builds the API. authMW resolves the session cookie to an
// identity and must run before any role policy.
func NewRouter(
	logger *slog.Logger,
	requestTimeout time.Duration,
	authMW gin.HandlerFunc,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Timeout(requestTimeout))

	api := r.Group("/api/v1")

	// Public
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/logout", authHandler.Logout)
	api.GET("/login-status", authHandler.LoginStatus)
	api.POST("/verify-user/:verificationToken", authHandler.VerifyUser)
	api.POST("/forgot-password", authHandler.ForgotPassword)
	api.POST("/reset-password/:resetPasswordToken", authHandler.ResetPassword)

	// Session required
	authed := api.Group("", authMW)
	authed.GET("/profile", userHandler.Profile)
	authed.PATCH("/profile", userHandler.UpdateProfile)
	authed.PATCH("/change-password", userHandler.ChangePassword)
	authed.POST("/verify-email", authHandler.RequestVerification)

	// Role gated
	admin := authed.Group("/admin")
	admin.GET("/users", middleware.CreatorOrAdmin(), adminHandler.ListUsers)
	admin.DELETE("/users/:id", middleware.AdminOnly(), adminHandler.DeleteUser)

	return r
}
