package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-storefront/internal/model"
	"go-storefront/pkg/apierror"
)

const bcryptCost = 12

// userStore is the slice of the user repository the credential service
// needs.
type userStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) error
}

// AuthService owns credential verification and account creation against
// the user store. Token minting lives in TokenService.
type AuthService struct {
	users userStore
}

func NewAuthService(users userStore) *AuthService {
	return &AuthService{users: users}
}

// Signup creates a user with a bcrypt hash (per-user salt is encoded
// inside the hash string). Duplicate detection is delegated to the
// store's unique index rather than a lookup-then-insert pair.
func (s *AuthService) Signup(ctx context.Context, email string, password string) (model.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.AuthUser{}, apierror.BadRequest("email and password are required", "")
	}
	if !strings.Contains(email, "@") {
		return model.AuthUser{}, apierror.BadRequest("email is not valid", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return model.AuthUser{}, err
		}
		return model.AuthUser{}, apierror.Upstream("failed to create user", err.Error())
	}

	return model.AuthUser{ID: user.ID, Email: user.Email}, nil
}

// VerifyCredentials looks the user up by email and checks the password
// against the stored hash. Lookup failures and mismatches come back as
// distinct sentinel errors; handlers flatten both to a generic 400.
func (s *AuthService) VerifyCredentials(ctx context.Context, email string, password string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.User{}, apierror.BadRequest("email and password are required", "")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, apierror.Upstream("failed to look up user", err.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	return user, nil
}
