// Package server assembles the HTTP engine: middleware chain, route table,
// and health endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-api/internal/apilog"
	authhandler "user-management-api/internal/auth/handler"
	authservice "user-management-api/internal/auth/service"
	"user-management-api/internal/server/middleware"
	userhandler "user-management-api/internal/user/handler"
	userservice "user-management-api/internal/user/service"
)

// publicPrefixes are the paths served without a Bearer token. Login, refresh,
// logout, and email verification must work without a live session.
var publicPrefixes = []string{"/health", "/auth"}

// Pinger reports storage reachability for the health endpoint (e.g.
// *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the services and infrastructure the router wires together.
type Deps struct {
	Auth  *authservice.AuthService
	Users *userservice.UserService
	// Recorder persists request logs; may be nil to disable DB logging.
	Recorder *apilog.Recorder
	// Limiter applies per-client rate limiting; may be nil to disable.
	Limiter *middleware.RateLimiter
	// Pinger is checked by /health; may be nil to skip the storage check.
	Pinger Pinger

	RefreshTTL    time.Duration
	SecureCookies bool
	Logger        *zap.Logger
}

// NewRouter builds the gin engine with the full middleware chain and route
// table.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLog(logger, deps.Recorder))
	if deps.Limiter != nil {
		router.Use(deps.Limiter.Middleware())
	}
	router.Use(middleware.Errors(logger))
	router.Use(middleware.Authenticate(deps.Auth, publicPrefixes))

	router.GET("/health", healthHandler(deps.Pinger))

	authhandler.NewHandler(deps.Auth, deps.Users, deps.RefreshTTL, deps.SecureCookies).
		Register(router.Group("/auth"))
	userhandler.NewHandler(deps.Users).
		Register(router.Group("/users"))

	return router
}

func healthHandler(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "storage unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
	}
}
