package auth

import (
	"github.com/google/uuid"

	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

// RegisterRequest carries the signup payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Identity is the public shape of an authenticated account.
type Identity struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Phone    string         `json:"phone"`
	Role     enums.UserRole `json:"role"`
}

// Session is the token pair handed to a client after register/login.
type Session struct {
	Identity     Identity `json:"identity"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

func identityFromUser(user *models.User) Identity {
	return Identity{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Phone:    user.Phone,
		Role:     user.Role,
	}
}
