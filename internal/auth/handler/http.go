// Package handler exposes the auth lifecycle over HTTP: login, refresh,
// logout, and email verification.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"user-management-api/internal/account/domain"
	"user-management-api/internal/auth/service"
)

const refreshCookie = "refreshToken"

// EmailVerifier redeems email verification tokens. Implemented by the user
// service.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) (*domain.Account, error)
}

// Handler serves the /auth routes.
type Handler struct {
	auth          *service.AuthService
	verifier      EmailVerifier
	refreshTTL    time.Duration
	secureCookies bool
}

// NewHandler returns the auth HTTP handler. secureCookies should be true in
// production so the refresh cookie is HTTPS-only.
func NewHandler(auth *service.AuthService, verifier EmailVerifier, refreshTTL time.Duration, secureCookies bool) *Handler {
	return &Handler{
		auth:          auth,
		verifier:      verifier,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

// Register mounts the auth routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/logout", h.Logout)
	rg.GET("/verify-email", h.VerifyEmail)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates email/password, sets the refresh token as an HttpOnly
// cookie, and returns the access token plus the user.
// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	creds, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	h.setRefreshCookie(c, creds.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": creds.AccessToken,
		"user":        userToResponse(creds.Account),
	})
}

// Refresh rotates the refresh credential, taken from the body or the cookie,
// and returns a fresh access token. The new refresh token replaces the
// cookie.
// POST /auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(refreshCookie)
	}

	creds, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	h.setRefreshCookie(c, creds.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": creds.AccessToken})
}

// Logout revokes the session behind the refresh token, taken from the body,
// the cookie, or a Bearer header, then clears the cookie. Always 204 unless
// the store is down.
// POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(refreshCookie)
	}
	if token == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(header[len("Bearer "):])
		}
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// VerifyEmail redeems the verification token from the query string and
// activates the account.
// GET /auth/verify-email?token=...
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	a, err := h.verifier.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "email verified",
		"user":    userToResponse(a),
	})
}

func (h *Handler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, token, int(h.refreshTTL.Seconds()), "/", "", h.secureCookies, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, "", -1, "/", "", h.secureCookies, true)
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userToResponse(a *domain.Account) *userResponse {
	if a == nil {
		return nil
	}
	return &userResponse{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      string(a.Role),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
