package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	// IdentityHeader is set by this middleware only. Any value the
	// client supplies is stripped before identity resolution.
	IdentityHeader = "X-Current-User-Id"

	loginPath = "/auth/login"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

type tokenVerifier interface {
	VerifyAccessToken(token string) (string, error)
	VerifyRefreshToken(token string) (string, error)
	IssueAccessToken(userID string) (string, error)
}

// SessionMiddleware resolves the caller's identity from token cookies
// on every request. Expired access tokens are refreshed transparently
// when a valid refresh token is present; protected paths redirect to
// the login page when neither token verifies. Unprotected paths are
// never blocked by identity resolution.
type SessionMiddleware struct {
	tokens         tokenVerifier
	protectedPaths []string
	secureCookies  bool
}

func NewSessionMiddleware(tokens tokenVerifier, protectedPaths []string, secureCookies bool) *SessionMiddleware {
	return &SessionMiddleware{
		tokens:         tokens,
		protectedPaths: protectedPaths,
		secureCookies:  secureCookies,
	}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(IdentityHeader)

		accessToken := cookieValue(r, AccessTokenCookie)
		refreshToken := cookieValue(r, RefreshTokenCookie)

		if accessToken != "" {
			if userID, err := m.tokens.VerifyAccessToken(accessToken); err == nil {
				next.ServeHTTP(w, withIdentity(r, userID))
				return
			}
		}

		if refreshToken != "" {
			userID, err := m.tokens.VerifyRefreshToken(refreshToken)
			if err == nil {
				newAccessToken, issueErr := m.tokens.IssueAccessToken(userID)
				if issueErr != nil {
					// Signing is unavailable, not a credential
					// problem. Degrade to anonymous rather than
					// punishing the caller's session.
					slog.Error("access token refresh failed", "error", issueErr)
					m.finishAnonymous(w, r, next, false)
					return
				}

				http.SetCookie(w, &http.Cookie{
					Name:     AccessTokenCookie,
					Value:    newAccessToken,
					Path:     "/",
					HttpOnly: true,
					Secure:   m.secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
				next.ServeHTTP(w, withIdentity(r, userID))
				return
			}
		}

		// Neither token verified. Drop whatever stale cookies were
		// presented before deciding whether to block.
		staleCookies := accessToken != "" || refreshToken != ""
		m.finishAnonymous(w, r, next, staleCookies)
	})
}

func (m *SessionMiddleware) finishAnonymous(w http.ResponseWriter, r *http.Request, next http.Handler, clearCookies bool) {
	if clearCookies {
		m.expireCookie(w, AccessTokenCookie)
		m.expireCookie(w, RefreshTokenCookie)
	}

	if m.isProtected(r.URL.Path) {
		target := loginPath + "?from=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	next.ServeHTTP(w, r)
}

func (m *SessionMiddleware) isProtected(path string) bool {
	for _, prefix := range m.protectedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *SessionMiddleware) expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookies,
	})
}

func withIdentity(r *http.Request, userID string) *http.Request {
	r.Header.Set(IdentityHeader, userID)
	return r.WithContext(WithUserID(r.Context(), userID))
}

// WithUserID attaches a resolved identity to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the identity attached by the session
// middleware, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
