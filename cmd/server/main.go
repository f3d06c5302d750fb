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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	accountrepo "user-management-api/internal/account/repository"
	"user-management-api/internal/apilog"
	apilogrepo "user-management-api/internal/apilog/repository"
	authservice "user-management-api/internal/auth/service"
	"user-management-api/internal/config"
	"user-management-api/internal/db"
	"user-management-api/internal/mailer"
	"user-management-api/internal/security"
	"user-management-api/internal/server"
	"user-management-api/internal/server/middleware"
	sessionrepo "user-management-api/internal/session/repository"
	userservice "user-management-api/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer pool.Close()

	accounts := accountrepo.NewPostgresRepository(pool)
	sessions := sessionrepo.NewPostgresRepository(pool)

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTTL(), cfg.VerifyTTL())
	mail := mailer.New(cfg.ResendAPIKey, cfg.EmailFrom, logger)

	authSvc := authservice.NewAuthService(accounts, sessions, hasher, tokens, cfg.RefreshTTL(), logger)
	userSvc := userservice.NewUserService(accounts, hasher, tokens, mail, cfg.VerifyBaseURL, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		defer limiter.Stop()
	}

	router := server.NewRouter(server.Deps{
		Auth:          authSvc,
		Users:         userSvc,
		Recorder:      apilog.NewRecorder(apilogrepo.NewPostgresRepository(pool), logger),
		Limiter:       limiter,
		Pinger:        pool,
		RefreshTTL:    cfg.RefreshTTL(),
		SecureCookies: cfg.IsProduction(),
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
