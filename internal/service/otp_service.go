package service

import (
	"context"
	"fmt"
	"time"

	"skillhub/internal/model"
	"skillhub/internal/repository"
	"skillhub/internal/utils"
)

const (
	// OTPTTL is how long an issued code stays valid.
	OTPTTL = 10 * time.Minute
	// ResetGrantTTL is how long a verified user may set a new password.
	ResetGrantTTL = 10 * time.Minute
)

// OTPService manages the one-time codes used for password recovery.
type OTPService interface {
	Issue(ctx context.Context, user *model.User) (string, error)
	Verify(user *model.User, candidate string) error
	Clear(ctx context.Context, user *model.User) error
	// Consume verifies the code, clears it and opens the reset window.
	Consume(ctx context.Context, user *model.User, candidate string) error
}

type otpService struct {
	users    repository.UserRepository
	generate func() (string, error)
	now      func() time.Time
}

func NewOTPService(users repository.UserRepository) OTPService {
	return &otpService{users: users, generate: utils.GenerateOTP, now: time.Now}
}

func (s *otpService) Issue(ctx context.Context, user *model.User) (string, error) {
	now := s.now()
	if user.HasActiveOTP(now) {
		return "", ErrOTPAlreadyActive
	}

	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	expiresAt := now.Add(OTPTTL)

	ok, err := s.users.SetOTPIfInactive(ctx, user.ID, code, expiresAt, now)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrOTPAlreadyActive
	}

	user.OTP = &code
	user.OTPExpiresAt = &expiresAt
	return code, nil
}

func (s *otpService) Verify(user *model.User, candidate string) error {
	if user.OTP == nil || user.OTPExpiresAt == nil || *user.OTP != candidate {
		return ErrOTPInvalid
	}
	if s.now().After(*user.OTPExpiresAt) {
		return ErrOTPExpired
	}
	return nil
}

func (s *otpService) Clear(ctx context.Context, user *model.User) error {
	if err := s.users.ClearOTP(ctx, user.ID); err != nil {
		return err
	}
	user.OTP = nil
	user.OTPExpiresAt = nil
	return nil
}

func (s *otpService) Consume(ctx context.Context, user *model.User, candidate string) error {
	if err := s.Verify(user, candidate); err != nil {
		return err
	}

	grant := s.now().Add(ResetGrantTTL)
	ok, err := s.users.ConsumeOTP(ctx, user.ID, candidate, grant)
	if err != nil {
		return err
	}
	if !ok {
		// another request consumed the code first
		return ErrOTPInvalid
	}

	user.OTP = nil
	user.OTPExpiresAt = nil
	user.ResetAllowedUntil = &grant
	return nil
}
