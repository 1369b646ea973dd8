package utils

import (
	"errors"
	"time"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenClaims is the format independent content of a session token.
type TokenClaims struct {
	UserID    int
	Role      string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec mints and parses session tokens.
// ParseToken returns ErrTokenExpired for a well-formed stale token and ErrTokenInvalid otherwise.
type TokenCodec interface {
	GenerateToken(userID int, role string) (string, *TokenClaims, error)
	ParseToken(tokenString string) (*TokenClaims, error)
}
