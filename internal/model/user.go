package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CartID       *string   `json:"cart_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthUser is the client-safe projection of a User. It never carries
// the password hash.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LoginResult struct {
	AccessToken string   `json:"access_token"`
	User        AuthUser `json:"user"`
}
