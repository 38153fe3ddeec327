package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"go-storefront/internal/model"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(m *RateLimitMiddleware, path string, clientIP string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = clientIP + ":54321"
	rec := httptest.NewRecorder()
	m.Handler(okHandler()).ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AuthBudgetIsTighter(t *testing.T) {
	t.Parallel()

	m := NewRateLimitMiddleware(100, 2)

	require.Equal(t, http.StatusOK, doRequest(m, "/api/v1/auth/login", "10.0.0.1").Code)
	require.Equal(t, http.StatusOK, doRequest(m, "/api/v1/auth/login", "10.0.0.1").Code)

	rec := doRequest(m, "/api/v1/auth/login", "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "RATE_LIMITED", body.Error.Code)

	// The general budget for the same client is untouched.
	require.Equal(t, http.StatusOK, doRequest(m, "/api/v1/cart", "10.0.0.1").Code)
}

func TestRateLimit_ClientsAreIndependent(t *testing.T) {
	t.Parallel()

	m := NewRateLimitMiddleware(100, 1)

	require.Equal(t, http.StatusOK, doRequest(m, "/api/v1/auth/login", "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(m, "/api/v1/auth/login", "10.0.0.1").Code)

	require.Equal(t, http.StatusOK, doRequest(m, "/api/v1/auth/login", "10.0.0.2").Code)
}

func TestRateLimit_HealthIsExempt(t *testing.T) {
	t.Parallel()

	m := NewRateLimitMiddleware(1, 1)

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, doRequest(m, "/health", "10.0.0.1").Code)
	}
}

func TestRateLimit_ForwardedForTakesFirstHop(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	require.Equal(t, "203.0.113.7", extractClientIP(req))
}
