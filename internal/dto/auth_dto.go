package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RegisterRequest is the body for POST /users/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserProfileResponse is the payload for GET /users/me.
type UserProfileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse acknowledges a created entity along with its id.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
