package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/user-accounts/config"
	"github.com/ErlanBelekov/user-accounts/internal/email"
	"github.com/ErlanBelekov/user-accounts/internal/health"
	"github.com/ErlanBelekov/user-accounts/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/user-accounts/internal/log"
	"github.com/ErlanBelekov/user-accounts/internal/metrics"
	"github.com/ErlanBelekov/user-accounts/internal/password"
	"github.com/ErlanBelekov/user-accounts/internal/session"
	"github.com/ErlanBelekov/user-accounts/internal/token"
	httptransport "github.com/ErlanBelekov/user-accounts/internal/transport/http"
	"github.com/ErlanBelekov/user-accounts/internal/transport/http/handler"
	"github.com/ErlanBelekov/user-accounts/internal/transport/http/middleware"
	"github.com/ErlanBelekov/user-accounts/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(os.Stdout, cfg.Env, cfg.SlogLevel())

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			stop()
			pool.Close()
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	// Stores
	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)

	// Credentials
	issuer := session.NewIssuer([]byte(cfg.JWTSecret), session.WithTTL(cfg.SessionTTL))
	hasher := password.NewBcrypt(cfg.BcryptCost)
	tokens := token.NewManager(tokenRepo)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, logger)

	// Use cases
	authUsecase := usecase.NewAuthUsecase(userRepo, tokens, hasher, issuer, sender, usecase.MailConfig{
		ClientURL: cfg.ClientURL,
		From:      cfg.MailFrom,
		ReplyTo:   cfg.MailReplyTo,
	})
	adminUsecase := usecase.NewAdminUsecase(userRepo, hasher)

	// Handlers
	authHandler := handler.NewAuthHandler(authUsecase, issuer.TTL(), logger)
	userHandler := handler.NewUserHandler(authUsecase, logger)
	adminHandler := handler.NewAdminHandler(adminUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(map[string]health.Pinger{"postgres": pool}, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(
			logger,
			cfg.RequestTimeout,
			middleware.Authenticate(issuer, userRepo, logger),
			authHandler,
			userHandler,
			adminHandler,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
