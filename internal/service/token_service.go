package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillhub/internal/repository"
	"skillhub/internal/utils"
)

// Identity is the authenticated principal behind a bearer token.
type Identity struct {
	UserID    int
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// TokenService issues, authenticates and revokes bearer tokens.
type TokenService interface {
	Issue(ctx context.Context, userID int, role string) (string, time.Time, error)
	Authenticate(ctx context.Context, token string) (*Identity, error)
	Invalidate(ctx context.Context, token string) error
}

type tokenService struct {
	codec   utils.TokenCodec
	revoked repository.RevocationStore
	now     func() time.Time
}

func NewTokenService(codec utils.TokenCodec, revoked repository.RevocationStore) TokenService {
	return &tokenService{codec: codec, revoked: revoked, now: time.Now}
}

func (s *tokenService) Issue(ctx context.Context, userID int, role string) (string, time.Time, error) {
	token, claims, err := s.codec.GenerateToken(userID, role)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.revoked.Clear(ctx, claims.TokenID); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to reset token revocation: %w", err)
	}
	return token, claims.ExpiresAt, nil
}

func (s *tokenService) parse(token string) (*utils.TokenClaims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}
	claims, err := s.codec.ParseToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *tokenService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenInvalid
	}
	return &Identity{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *tokenService) Invalidate(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if errors.Is(err, ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
