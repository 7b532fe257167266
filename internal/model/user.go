package model

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Role controls access to the admin surface.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is a registered account. PasswordHash is a bcrypt hash and is never
// serialised.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration payload.
func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return NewDomainError(ErrCodeInvalidArgument, "Name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return NewDomainError(ErrCodeInvalidArgument, "A valid email address is required")
	}
	if len(r.Password) < 8 {
		return NewDomainError(ErrCodeInvalidArgument, "Password must be at least 8 characters")
	}
	return nil
}

// LoginRequest is the payload for obtaining a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token and the account it belongs to.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
