package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	accountdomain "user-management-api/internal/account/domain"
	"user-management-api/internal/apperr"
	authservice "user-management-api/internal/auth/service"
	sessiondomain "user-management-api/internal/session/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	ident *authservice.Identity
	err   error
}

func (v *stubVerifier) Verify(ctx context.Context, accessToken string) (*authservice.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.ident, nil
}

func testIdentity(role accountdomain.Role) *authservice.Identity {
	return &authservice.Identity{
		Account: &accountdomain.Account{ID: "acct-1", Role: role},
		Session: &sessiondomain.Session{ID: "sess-1", AccountID: "acct-1"},
	}
}

func TestAuthenticate_PublicPathSkips(t *testing.T) {
	router := gin.New()
	router.Use(Authenticate(&stubVerifier{err: authservice.ErrInvalidAccessToken}, []string{"/health", "/auth"}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/auth/login"} {
		method := http.MethodGet
		if strings.HasPrefix(path, "/auth") {
			method = http.MethodPost
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: want 200 without token, got %d", path, w.Code)
		}
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	router := gin.New()
	router.Use(Authenticate(&stubVerifier{ident: testIdentity(accountdomain.RoleUser)}, nil))
	router.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: want 401, got %d", w.Code)
	}
}

func TestAuthenticate_SetsIdentity(t *testing.T) {
	router := gin.New()
	router.Use(Authenticate(&stubVerifier{ident: testIdentity(accountdomain.RoleAdmin)}, nil))
	router.GET("/users", func(c *gin.Context) {
		accountID, _ := GetAccountID(c.Request.Context())
		sessionID, _ := GetSessionID(c.Request.Context())
		role, _ := GetRole(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"account": accountID, "session": sessionID, "role": role})
	})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"acct-1", "sess-1", "admin"} {
		if !strings.Contains(body, want) {
			t.Errorf("response %q missing %q", body, want)
		}
	}
}

func TestAuthenticate_RejectedToken(t *testing.T) {
	router := gin.New()
	router.Use(Authenticate(&stubVerifier{err: authservice.ErrSessionInvalid}, nil))
	router.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("rejected token: want 401, got %d", w.Code)
	}
}

func TestExtractBearer(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"no scheme", "abc123", ""},
		{"scheme only", "Bearer ", ""},
		{"extra spaces", "Bearer   abc123  ", "abc123"},
	}
	for _, tc := range testCases {
		if got := extractBearer(tc.header); got != tc.want {
			t.Errorf("%s: extractBearer(%q) = %q, want %q", tc.name, tc.header, got, tc.want)
		}
	}
}

func TestRequireAdminOrSelf(t *testing.T) {
	newRouter := func(accountID, role string) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), accountID, "sess-1", role))
		})
		router.DELETE("/users/:id", RequireAdminOrSelf("id"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return router
	}

	testCases := []struct {
		name      string
		accountID string
		role      string
		target    string
		want      int
	}{
		{"admin deletes anyone", "acct-1", "admin", "/users/acct-2", http.StatusNoContent},
		{"user deletes self", "acct-1", "user", "/users/acct-1", http.StatusNoContent},
		{"user deletes other", "acct-1", "user", "/users/acct-2", http.StatusForbidden},
		{"no identity", "", "", "/users/acct-2", http.StatusForbidden},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tc.accountID, tc.role).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, tc.target, nil))
			if w.Code != tc.want {
				t.Errorf("want %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	newRouter := func(role string) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), "acct-1", "sess-1", role))
		})
		router.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	w := httptest.NewRecorder()
	newRouter("admin").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if w.Code != http.StatusOK {
		t.Errorf("admin: want 200, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	newRouter("user").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("user: want 403, got %d", w.Code)
	}
}

func TestErrors_RendersKind(t *testing.T) {
	router := gin.New()
	router.Use(Errors(zap.NewNop()))
	router.GET("/conflict", func(c *gin.Context) {
		c.Error(apperr.New(apperr.KindConflict, "email already in use"))
		c.Abort()
	})
	router.GET("/secret-mismatch", func(c *gin.Context) {
		c.Error(authservice.ErrSecretMismatch)
		c.Abort()
	})
	router.GET("/session-invalid", func(c *gin.Context) {
		c.Error(authservice.ErrSessionInvalid)
		c.Abort()
	})
	router.GET("/infra", func(c *gin.Context) {
		c.Error(apperr.Infra(context.DeadlineExceeded))
		c.Abort()
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), "email already in use") {
		t.Errorf("conflict: got %d %q", w.Code, w.Body.String())
	}

	// A mismatched secret renders exactly like an invalid session.
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/secret-mismatch", nil))
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/session-invalid", nil))
	if w1.Code != http.StatusUnauthorized || w1.Code != w2.Code || w1.Body.String() != w2.Body.String() {
		t.Errorf("secret mismatch must be indistinguishable: %d %q vs %d %q",
			w1.Code, w1.Body.String(), w2.Code, w2.Body.String())
	}

	// Infrastructure details never reach the response body.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/infra", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("infra: want 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "deadline") {
		t.Errorf("infra body leaks cause: %q", w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("burst requests should pass: %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request should be limited: %v", codes)
	}

	// A different client has its own budget.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("separate client should pass: %d", w.Code)
	}
}

func TestRateLimiter_Stop(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	rl.Stop()

	// Stopping the sweep only ends the background cleanup; requests are
	// still budgeted.
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("request after Stop: %d", w.Code)
	}
}

func TestCaptureBody_RedactsCredentials(t *testing.T) {
	body := `{"email":"a@x.com","password":"hunter22","refreshToken":"sess.secret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	captured := captureBody(c)
	s := string(captured)
	if strings.Contains(s, "hunter22") || strings.Contains(s, "sess.secret") {
		t.Errorf("captured body leaks credentials: %q", s)
	}
	if !strings.Contains(s, "[REDACTED]") || !strings.Contains(s, "a@x.com") {
		t.Errorf("captured body: %q", s)
	}

	// The handler still sees the original body.
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(c.Request.Body); err != nil {
		t.Fatalf("read restored body: %v", err)
	}
	if buf.String() != body {
		t.Errorf("restored body = %q, want original", buf.String())
	}
}

func TestCaptureBody_NonJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString("not json"))
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	if got := captureBody(c); got != nil {
		t.Errorf("non-JSON body should not be captured: %q", got)
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("panic: want 500, got %d", w.Code)
	}
}
