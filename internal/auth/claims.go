package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UnverifiedClaims is a local, signature-unchecked decode of the bearer
// token payload. It exists purely so the UI layer can display who is logged
// in without an extra round trip. It must never feed an authorization
// decision; the backend is the only party that verifies the token.
type UnverifiedClaims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	jwt.RegisteredClaims
}

// DecodeUnverified parses the token payload without verifying the signature.
func DecodeUnverified(token string) (*UnverifiedClaims, error) {
	claims := &UnverifiedClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// ExpiredAt reports whether the token is past its exp claim at the given
// instant. Tokens without an exp claim never expire client-side.
func (c *UnverifiedClaims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Time)
}
