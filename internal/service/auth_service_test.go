package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillhub/internal/logging"
	"skillhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	repo      *fakeUserRepo
	deliverer *fakeDeliverer
	tokens    TokenService
	svc       AuthService
}

func newAuthFixture(t *testing.T, adminEmail string) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:      newFakeUserRepo(),
		deliverer: &fakeDeliverer{},
		tokens:    newTestTokenService(time.Hour),
	}
	f.svc = NewAuthService(f.repo, f.tokens, NewOTPService(f.repo), f.deliverer, logging.Discard(), adminEmail)
	return f
}

func aliceRequest() model.RegisterRequest {
	return model.RegisterRequest{
		Name:                 "Alice",
		Email:                "alice@example.com",
		Mobile:               "5551234",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
		Category:             "student",
		DateOfBirth:          "1990-04-12",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()

	user, err := f.svc.Register(ctx, aliceRequest())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	require.NotNil(t, user.DateOfBirth)
	assert.Equal(t, "1990-04-12", user.DateOfBirth.Format(model.DateLayout))

	loggedIn, token, err := f.svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	id, err := f.tokens.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)

	_, _, err = f.svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, aliceRequest())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"The email has already been taken."}, verr.Fields["email"])
	assert.Equal(t, []string{"The mobile has already been taken."}, verr.Fields["mobile"])
}

func TestAuthService_RegisterInitialAdmin(t *testing.T) {
	f := newAuthFixture(t, "Alice@Example.com")

	user, err := f.svc.Register(context.Background(), aliceRequest())
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()
	_, err := f.svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	_, token, err := f.svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, token))

	_, err = f.tokens.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthService_GetUser(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()
	alice, err := f.svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	got, err := f.svc.GetUser(ctx, &Identity{UserID: alice.ID, Role: model.RoleUser}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)

	_, err = f.svc.GetUser(ctx, &Identity{UserID: 99, Role: model.RoleUser}, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetUser(ctx, &Identity{UserID: 99, Role: model.RoleAdmin}, 12345)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()
	alice, err := f.svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	bobReq := aliceRequest()
	bobReq.Email = "bob@example.com"
	bobReq.Mobile = "5559999"
	_, err = f.svc.Register(ctx, bobReq)
	require.NoError(t, err)

	name := "Alice Cooper"
	updated, err := f.svc.UpdateProfile(ctx, alice.ID, model.UpdateProfileRequest{Name: &name, ClearDateOfBirth: true})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, "5551234", updated.Mobile)
	assert.Nil(t, updated.DateOfBirth)
	assert.Equal(t, alice.PasswordHash, f.repo.stored(alice.ID).PasswordHash, "hash unchanged without a password")

	taken := "5559999"
	_, err = f.svc.UpdateProfile(ctx, alice.ID, model.UpdateProfileRequest{Mobile: &taken})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "mobile")

	own := "5551234"
	_, err = f.svc.UpdateProfile(ctx, alice.ID, model.UpdateProfileRequest{Mobile: &own})
	assert.NoError(t, err)

	pw, mismatch := "newsecret", "other"
	_, err = f.svc.UpdateProfile(ctx, alice.ID, model.UpdateProfileRequest{Password: &pw, PasswordConfirmation: &mismatch})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "password")

	_, err = f.svc.UpdateProfile(ctx, alice.ID, model.UpdateProfileRequest{Password: &pw, PasswordConfirmation: &pw})
	require.NoError(t, err)
	_, _, err = f.svc.Login(ctx, "alice@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestAuthService_PasswordRecovery(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()
	alice, err := f.svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	// reset without a verified code is refused
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "alice@example.com", "newsecret"), ErrResetNotVerified)

	require.NoError(t, f.svc.ForgotPassword(ctx, "alice@example.com"))
	require.Len(t, f.deliverer.calls, 1)
	assert.Equal(t, "alice@example.com", f.deliverer.calls[0])
	code := f.deliverer.codes[0]
	assert.Len(t, code, 4)

	assert.ErrorIs(t, f.svc.ForgotPassword(ctx, "alice@example.com"), ErrOTPAlreadyActive)
	assert.Len(t, f.deliverer.calls, 1)

	wrong := "0000"
	if code == wrong {
		wrong = "0001"
	}
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "alice@example.com", wrong), ErrOTPInvalid)

	require.NoError(t, f.svc.VerifyOTP(ctx, "alice@example.com", code))
	stored := f.repo.stored(alice.ID)
	assert.Nil(t, stored.OTP)
	assert.Nil(t, stored.OTPExpiresAt)

	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "alice@example.com", code), ErrOTPInvalid)

	require.NoError(t, f.svc.ResetPassword(ctx, "alice@example.com", "newsecret"))

	_, _, err = f.svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.svc.Login(ctx, "alice@example.com", "newsecret")
	assert.NoError(t, err)

	// the grant is single use
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "alice@example.com", "another1"), ErrResetNotVerified)
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t, "")

	err := f.svc.ForgotPassword(context.Background(), "ghost@example.com")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"The selected email is invalid."}, verr.Fields["email"])
	assert.Empty(t, f.deliverer.calls)
}

func TestAuthService_ForgotPasswordDeliveryFailure(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()
	alice, err := f.svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	f.deliverer.err = errors.New("smtp unreachable")
	assert.ErrorIs(t, f.svc.ForgotPassword(ctx, "alice@example.com"), ErrDeliveryFailed)

	stored := f.repo.stored(alice.ID)
	assert.Nil(t, stored.OTP, "undelivered code is cleared")
	assert.Nil(t, stored.OTPExpiresAt)

	// the user can retry straight away
	f.deliverer.err = nil
	assert.NoError(t, f.svc.ForgotPassword(ctx, "alice@example.com"))
}

func TestAuthService_VerifyExpiredOTP(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()
	alice, err := f.svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	code := "1234"
	past := time.Now().Add(-time.Minute)
	f.repo.mu.Lock()
	f.repo.users[alice.ID].OTP = &code
	f.repo.users[alice.ID].OTPExpiresAt = &past
	f.repo.mu.Unlock()

	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "alice@example.com", "1234"), ErrOTPExpired)
}
