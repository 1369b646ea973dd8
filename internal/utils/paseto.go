package utils

import (
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

// PasetoUtil mints PASETO v4.local tokens (XChaCha20-Poly1305 with a 32 byte symmetric key).
type PasetoUtil struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
}

// NewPasetoUtil builds a PasetoUtil from a 32 byte key.
func NewPasetoUtil(symmetricKey []byte, ttl time.Duration) (*PasetoUtil, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}
	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}
	return &PasetoUtil{key: key, ttl: ttl}, nil
}

func (p *PasetoUtil) GenerateToken(userID int, role string) (string, *TokenClaims, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID:    userID,
		Role:      role,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(p.ttl),
	}

	token := paseto.NewToken()
	token.SetIssuedAt(claims.IssuedAt)
	token.SetNotBefore(claims.IssuedAt)
	token.SetExpiration(claims.ExpiresAt)
	token.SetJti(claims.TokenID)
	token.SetSubject(strconv.Itoa(userID))
	token.SetString("role", role)

	return token.V4Encrypt(p.key, nil), claims, nil
}

// ParseToken decrypts the token. Expiry is checked here rather than by the parser
// so that a stale but authentic token is reported as ErrTokenExpired.
func (p *PasetoUtil) ParseToken(tokenString string) (*TokenClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(p.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	exp, err := token.GetExpiration()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if time.Now().After(exp) {
		return nil, ErrTokenExpired
	}

	sub, err := token.GetSubject()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	userID, err := strconv.Atoi(sub)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	jti, err := token.GetJti()
	if err != nil || jti == "" {
		return nil, ErrTokenInvalid
	}
	role, err := token.GetString("role")
	if err != nil {
		return nil, ErrTokenInvalid
	}
	iat, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &TokenClaims{
		UserID:    userID,
		Role:      role,
		TokenID:   jti,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}
