package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-storefront/internal/service"
)

func newSessionTestTokens(accessTTL time.Duration) *service.TokenService {
	return service.NewTokenService("session-access-secret", "session-refresh-secret", accessTTL, 7*24*time.Hour)
}

// echoIdentity records what the downstream handler observed.
type echoIdentity struct {
	called bool
	header string
	ctxID  string
	ctxOK  bool
}

func (e *echoIdentity) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.called = true
		e.header = r.Header.Get(IdentityHeader)
		e.ctxID, e.ctxOK = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func findCookie(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSession_ValidAccessTokenResolvesIdentity(t *testing.T) {
	t.Parallel()

	tokens := newSessionTestTokens(time.Hour)
	m := NewSessionMiddleware(tokens, []string{"/cart"}, false)

	accessToken, err := tokens.IssueAccessToken("u1")
	require.NoError(t, err)

	downstream := &echoIdentity{}
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: accessToken})
	rec := httptest.NewRecorder()

	m.Handler(downstream.handler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, downstream.called)
	require.Equal(t, "u1", downstream.header)
	require.True(t, downstream.ctxOK)
	require.Equal(t, "u1", downstream.ctxID)
}

func TestSession_ClientSuppliedIdentityHeaderIsStripped(t *testing.T) {
	t.Parallel()

	m := NewSessionMiddleware(newSessionTestTokens(time.Hour), nil, false)

	downstream := &echoIdentity{}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(IdentityHeader, "forged-admin")
	rec := httptest.NewRecorder()

	m.Handler(downstream.handler()).ServeHTTP(rec, req)

	require.True(t, downstream.called)
	require.Empty(t, downstream.header)
	require.False(t, downstream.ctxOK)
}

func TestSession_ExpiredAccessRefreshesFromRefreshToken(t *testing.T) {
	t.Parallel()

	expiring := newSessionTestTokens(-time.Minute)
	staleAccess, err := expiring.IssueAccessToken("u1")
	require.NoError(t, err)
	refreshToken, err := expiring.IssueRefreshToken("u1")
	require.NoError(t, err)

	tokens := newSessionTestTokens(time.Hour)
	m := NewSessionMiddleware(tokens, []string{"/cart"}, false)

	downstream := &echoIdentity{}
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: staleAccess})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: refreshToken})
	rec := httptest.NewRecorder()

	m.Handler(downstream.handler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1", downstream.header)

	minted := findCookie(t, rec.Result(), AccessTokenCookie)
	require.NotNil(t, minted, "a fresh access token cookie should be set")
	require.NotEmpty(t, minted.Value)
	require.True(t, minted.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, minted.SameSite)
	require.Zero(t, minted.MaxAge, "access cookie is session scoped")

	userID, err := tokens.VerifyAccessToken(minted.Value)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
}

func TestSession_ProtectedPathRedirectsWhenNothingVerifies(t *testing.T) {
	t.Parallel()

	m := NewSessionMiddleware(newSessionTestTokens(time.Hour), []string{"/cart"}, false)

	downstream := &echoIdentity{}
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "also-garbage"})
	rec := httptest.NewRecorder()

	m.Handler(downstream.handler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.False(t, downstream.called)
	require.Equal(t, "/auth/login?from=%2Fcart", rec.Header().Get("Location"))

	// Stale cookies are expired on the way out.
	res := rec.Result()
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		cleared := findCookie(t, res, name)
		require.NotNil(t, cleared)
		require.Empty(t, cleared.Value)
		require.Equal(t, -1, cleared.MaxAge)
	}
}

func TestSession_UnprotectedPathNeverBlocks(t *testing.T) {
	t.Parallel()

	m := NewSessionMiddleware(newSessionTestTokens(time.Hour), []string{"/cart"}, false)

	downstream := &echoIdentity{}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
	rec := httptest.NewRecorder()

	m.Handler(downstream.handler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, downstream.called)
	require.Empty(t, downstream.header, "request proceeds anonymously")
}

func TestSession_AnonymousWithoutCookiesSetsNothing(t *testing.T) {
	t.Parallel()

	m := NewSessionMiddleware(newSessionTestTokens(time.Hour), []string{"/cart"}, false)

	downstream := &echoIdentity{}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()

	m.Handler(downstream.handler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies(), "no cookies to clear, none should be written")
}

func TestSession_RefreshRejectedOnProtectedPathRedirects(t *testing.T) {
	t.Parallel()

	other := service.NewTokenService("other-access", "other-refresh", time.Hour, time.Hour)
	foreignRefresh, err := other.IssueRefreshToken("u1")
	require.NoError(t, err)

	m := NewSessionMiddleware(newSessionTestTokens(time.Hour), []string{"/cart"}, false)

	req := httptest.NewRequest(http.MethodGet, "/cart/items", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: foreignRefresh})
	rec := httptest.NewRecorder()

	m.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/auth/login?from=%2Fcart%2Fitems", rec.Header().Get("Location"))
}
