// Package auth issues and verifies the JWTs that protect the order and
// admin surfaces, and owns password hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"attire-store/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the token claims carried for an authenticated user.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   model.Role
}

// TokenProvider signs and parses HS256 tokens.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenProvider creates a token provider with the given signing secret
// and token lifetime.
func NewTokenProvider(secret string, ttl time.Duration) *TokenProvider {
	return &TokenProvider{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate issues a signed token for the user.
func (p *TokenProvider) Generate(user *model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(p.ttl).Unix(),
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the token signature and expiry and returns its claims.
func (p *TokenProvider) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &Claims{
		UserID: userID,
		Email:  email,
		Role:   model.Role(role),
	}, nil
}
