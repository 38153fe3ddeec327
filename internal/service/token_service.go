package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-storefront/internal/model"
)

// TokenService issues and verifies the two classes of session
// credentials. Access and refresh tokens are signed with independent
// secrets so one class can never verify as the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.sign(userID, s.accessTTL, s.accessSecret)
}

func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.sign(userID, s.refreshTTL, s.refreshSecret)
}

// VerifyAccessToken returns the user id carried by a valid access
// token, or ErrInvalidToken on any signature, expiry, or structure
// problem.
func (s *TokenService) VerifyAccessToken(token string) (string, error) {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefreshToken(token string) (string, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) sign(userID string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) verify(tokenString string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", model.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", model.ErrInvalidToken
	}

	userID, _ := claims["id"].(string)
	if userID == "" {
		return "", model.ErrInvalidToken
	}

	return userID, nil
}
