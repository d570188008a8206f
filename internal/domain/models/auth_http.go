package models

import "time"

// Requests and responses for the auth HTTP endpoints.

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Tier     string `json:"tier" default:"free" validate:"omitempty,oneof=free pro premium"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateAPIKeyRequest struct {
	Name string `json:"name" default:"default" validate:"omitempty,max=64"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Tier        string `json:"tier"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Tier      string    `json:"tier"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKeyResponse returns a freshly minted key. APIKey carries the full
// plain key and is populated exactly once, at creation; listings leave it
// empty and never expose the stored hash.
type APIKeyResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	APIKey     string     `json:"api_key,omitempty"`
	Prefix     string     `json:"prefix"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// APIKeyListResponse lists a user's active keys.
type APIKeyListResponse struct {
	Keys  []*APIKeyResponse `json:"keys"`
	Count int               `json:"count"`
}

// NewUserResponse converts a domain user to its transport form.
func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Tier:      string(u.Tier),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
