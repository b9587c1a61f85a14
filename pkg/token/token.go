// Package token issues and verifies the signed identity tokens the API
// uses instead of server-side sessions.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for anything we can't verify - bad
// signature, expired, malformed, wrong algorithm.
var ErrInvalidToken = errors.New("invalid token")

// Claims is what we embed in every issued token. Name is carried so
// comment authorship can be denormalized without a user lookup.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Name   string    `json:"name"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a shared HMAC secret
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. Secret must not be empty -
// main treats a missing JWT_SECRET as a startup failure.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	return &Manager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token for the given identity
func (m *Manager) Issue(userID uuid.UUID, role, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token signature and expiry and returns its claims
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
