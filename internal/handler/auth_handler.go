package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-storefront/internal/middleware"
	"go-storefront/internal/model"
	"go-storefront/pkg/apierror"
)

type credentialService interface {
	Signup(ctx context.Context, email string, password string) (model.AuthUser, error)
	VerifyCredentials(ctx context.Context, email string, password string) (model.User, error)
}

type tokenIssuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	RefreshTTL() time.Duration
}

type userLookup interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type AuthHandler struct {
	credentials   credentialService
	tokens        tokenIssuer
	users         userLookup
	secureCookies bool
}

func NewAuthHandler(credentials credentialService, tokens tokenIssuer, users userLookup, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		credentials:   credentials,
		tokens:        tokens,
		users:         users,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	user, err := h.credentials.Signup(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	user, err := h.credentials.VerifyCredentials(r.Context(), payload.Email, payload.Password)
	if err != nil {
		// Unknown email and wrong password are deliberately the same
		// response.
		if errors.Is(err, model.ErrUserNotFound) {
			err = model.ErrInvalidCredentials
		}
		writeError(w, err)
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user.ID)
	if err != nil {
		writeError(w, apierror.New("AUTH_UNAVAILABLE", "authentication temporarily unavailable", "", http.StatusInternalServerError))
		return
	}
	refreshToken, err := h.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		writeError(w, apierror.New("AUTH_UNAVAILABLE", "authentication temporarily unavailable", "", http.StatusInternalServerError))
		return
	}

	h.setAuthCookies(w, accessToken, refreshToken)
	writeSuccess(w, http.StatusOK, model.LoginResult{
		AccessToken: accessToken,
		User:        model.AuthUser{ID: user.ID, Email: user.Email},
	})
}

// Logout expires both auth cookies. The guest cart cookie is left
// alone so an anonymous cart survives the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.expireCookie(w, middleware.AccessTokenCookie)
	h.expireCookie(w, middleware.RefreshTokenCookie)
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.AuthUser{ID: user.ID, Email: user.Email})
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, accessToken string, refreshToken string) {
	// Access token cookie is session-scoped; expiry is enforced by the
	// token itself and the transparent refresh flow.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokens.RefreshTTL().Seconds()),
	})
}

func (h *AuthHandler) expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
	})
}
