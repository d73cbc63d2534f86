package middleware_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/school_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, claims middleware.LedgerClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(user string, tenants ...string) middleware.LedgerClaims {
	return middleware.LedgerClaims{
		Tenants: tenants,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			Issuer:    "school-ledger",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func authRouter(issuer string) *gin.Engine {
	return tenantRouter(issuer, false)
}

func tenantRouter(issuer string, allowAll bool) *gin.Engine {
	r := gin.New()
	g := r.Group("/tenants/:tenantID", middleware.AuthMiddleware(secret, issuer), middleware.TenantAccess(allowAll))
	g.GET("/whoami", func(c *gin.Context) {
		user, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	})
	return r
}

func get(r http.Handler, url, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	r := authRouter("school-ledger")
	w := get(r, "/tenants/t1/whoami", sign(t, claimsFor("bursar", "t1")))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"bursar"}`, w.Body.String())
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired := claimsFor("bursar")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := claimsFor("bursar")
	wrongIssuer.Issuer = "someone-else"

	noSubject := claimsFor("")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claimsFor("bursar")).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsFor("bursar")).SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{name: "missing header", header: "", message: "Authorization header required"},
		{name: "not bearer", header: "Basic abc", message: "Authorization header format must be Bearer {token}"},
		{name: "expired", header: "Bearer " + sign(t, expired), message: "Token has expired"},
		{name: "wrong issuer", header: "Bearer " + sign(t, wrongIssuer), message: "Invalid token"},
		{name: "none algorithm", header: "Bearer " + unsigned, message: "Invalid token"},
		{name: "wrong secret", header: "Bearer " + otherSecret, message: "Invalid token"},
		{name: "no subject", header: "Bearer " + sign(t, noSubject), message: "Invalid token claims"},
	}

	r := authRouter("school-ledger")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tenants/t1/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.message, errorMessage(t, w))
		})
	}
}

func TestAuthMiddleware_EmptyIssuerSkipsCheck(t *testing.T) {
	c := claimsFor("bursar", "t1")
	c.Issuer = ""
	w := get(authRouter(""), "/tenants/t1/whoami", sign(t, c))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantAccess(t *testing.T) {
	r := authRouter("school-ledger")

	assert.Equal(t, http.StatusOK, get(r, "/tenants/t2/whoami", sign(t, claimsFor("bursar", "t1", "t2"))).Code)

	w := get(r, "/tenants/t3/whoami", sign(t, claimsFor("bursar", "t1")))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You do not have access to this tenant", errorMessage(t, w))

	w = get(r, "/tenants/t1/whoami", sign(t, claimsFor("admin")))
	assert.Equal(t, http.StatusForbidden, w.Code, "a token without tenants is denied by default")
}

func TestTenantAccess_AllowAll(t *testing.T) {
	r := tenantRouter("school-ledger", true)

	assert.Equal(t, http.StatusOK, get(r, "/tenants/any/whoami", sign(t, claimsFor("admin"))).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/tenants/t3/whoami", sign(t, claimsFor("bursar", "t1"))).Code,
		"an explicit tenants claim still restricts the token")
}

func TestRateLimit(t *testing.T) {
	limiter, err := middleware.NewRateLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RateLimit(limiter))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := get(r, "/ping", "")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, get(r, "/ping", "").Code)

	blocked := get(r, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
}

func TestNewRateLimiter_InvalidFormat(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://school.example"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	preflight := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	preflight.Header.Set("Origin", "https://school.example")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, preflight)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://school.example", w.Header().Get("Access-Control-Allow-Origin"))

	foreign := httptest.NewRequest(http.MethodGet, "/ping", nil)
	foreign.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, foreign)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStructuredLoggingMiddleware_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.DiscardHandler)))
	r.GET("/ping", func(c *gin.Context) {
		assert.NotNil(t, middleware.GetLoggerFromCtx(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = get(r, "/ping", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
