package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peppolsheet/internal/config"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims SupabaseClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func userClaims(email, tenant string) SupabaseClaims {
	return SupabaseClaims{
		Email:       email,
		Role:        "authenticated",
		AppMetadata: AppMetadata{TenantID: tenant},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newAuthRouter(acl config.AccessControl) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	api := r.Group("/api", JWTAuth(testSecret), RequireTenant())
	api.GET("/me", func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"tenant": claims.TenantID(), "user": claims.UserID()})
	})
	admin := r.Group("/admin", JWTAuth(testSecret), RequireRole(acl, config.RoleAdmin, config.RoleSupport))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newAuthRouter(config.NewAccessControl("", ""))

	expired := userClaims("a@example.com", "t1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"valid", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), userClaims("a@example.com", "t1")), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("other"), userClaims("a@example.com", "t1")), http.StatusUnauthorized},
		{"wrong algorithm", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), userClaims("a@example.com", "t1")), http.StatusUnauthorized},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), http.StatusUnauthorized},
		{"no tenant", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), userClaims("a@example.com", "")), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, "/api/me", tc.token)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter(config.NewAccessControl("boss@example.com", "Help@Example.com"))

	cases := map[string]int{
		"boss@example.com": http.StatusNoContent,
		"help@example.com": http.StatusNoContent,
		"user@example.com": http.StatusForbidden,
	}
	for email, status := range cases {
		t.Run(email, func(t *testing.T) {
			tok := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), userClaims(email, ""))
			assert.Equal(t, status, do(r, "/admin/ping", tok).Code)
		})
	}
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := gin.New()
	r.Use(RateLimiter(ctx, 2, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "/", "").Code)
	w := do(r, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_Purge(t *testing.T) {
	rl := &rateLimiter{limit: 1, window: time.Second, entries: map[string]*rateEntry{
		"1.1.1.1": {count: 1, windowEnd: time.Now().Add(-time.Second)},
		"2.2.2.2": {count: 1, windowEnd: time.Now().Add(time.Hour)},
	}}
	assert.Equal(t, 1, rl.purge(time.Now()))
	assert.Len(t, rl.entries, 1)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/err", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	assert.Equal(t, http.StatusInternalServerError, do(r, "/panic", "").Code)
	w := do(r, "/err", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, w.Body.String())
}
