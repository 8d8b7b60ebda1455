package dto

import (
	"time"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// NewUserResponse maps a user model onto its public view.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username}
}

// AuthResponse carries a signed token after login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
