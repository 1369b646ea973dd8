package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillhub/internal/logging"
	"skillhub/internal/model"
	"skillhub/internal/repository"
	"skillhub/internal/utils"
)

// OTPDeliverer sends a recovery code to the user's address.
type OTPDeliverer interface {
	DeliverOTP(ctx context.Context, address, code string) error
}

// AuthService provides authentication, profile and password recovery flows
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, token string) error

	GetUser(ctx context.Context, requester *Identity, id int) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (*model.User, error)

	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, password string) error
}

type authService struct {
	users             repository.UserRepository
	tokens            TokenService
	otps              OTPService
	deliverer         OTPDeliverer
	log               logging.Logger
	initialAdminEmail string
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repository.UserRepository,
	tokens TokenService,
	otps OTPService,
	deliverer OTPDeliverer,
	log logging.Logger,
	initialAdminEmail string,
) AuthService {
	return &authService{
		users:             users,
		tokens:            tokens,
		otps:              otps,
		deliverer:         deliverer,
		log:               log,
		initialAdminEmail: initialAdminEmail,
	}
}

func duplicateToValidation(err error) error {
	var dup *repository.DuplicateFieldError
	if errors.As(err, &dup) {
		return fieldError(dup.Field, fmt.Sprintf("The %s has already been taken.", dup.Field))
	}
	return nil
}

func parseDate(field, value string) (*time.Time, error) {
	d, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return nil, fieldError(field, fmt.Sprintf("The %s field must match the format %s.", strings.ReplaceAll(field, "_", " "), "Y-m-d"))
	}
	return &d, nil
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	verr := &ValidationError{}
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		verr.Add("email", "The email has already been taken.")
	}
	existing, err = s.users.FindByMobile(ctx, req.Mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing mobile: %w", err)
	}
	if existing != nil {
		verr.Add("mobile", "The mobile has already been taken.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	dob, err := parseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleUser
	if s.initialAdminEmail != "" && strings.EqualFold(req.Email, s.initialAdminEmail) {
		role = model.RoleAdmin
		s.log.Info(ctx, "registering initial admin", "email", req.Email)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: hashedPassword,
		Category:     req.Category,
		DateOfBirth:  dob,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if verr := duplicateToValidation(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns a session token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(ctx, user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.tokens.Invalidate(ctx, token)
}

// GetUser returns the user with the given id. Only the user themself or an admin may read it.
func (s *authService) GetUser(ctx context.Context, requester *Identity, id int) (*model.User, error) {
	if requester.Role != model.RoleAdmin && requester.UserID != id {
		return nil, ErrForbidden
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *authService) UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for update: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	verr := &ValidationError{}
	for field, v := range map[string]*string{"name": req.Name, "mobile": req.Mobile, "category": req.Category} {
		if v != nil && strings.TrimSpace(*v) == "" {
			verr.Add(field, fmt.Sprintf("The %s field must not be empty.", field))
		}
	}
	if req.Password != nil && (req.PasswordConfirmation == nil || *req.PasswordConfirmation != *req.Password) {
		verr.Add("password", "The password field confirmation does not match.")
	}
	if req.Mobile != nil && *req.Mobile != user.Mobile {
		other, err := s.users.FindByMobile(ctx, *req.Mobile)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing mobile: %w", err)
		}
		if other != nil && other.ID != user.ID {
			verr.Add("mobile", "The mobile has already been taken.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// Apply updates
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Mobile != nil {
		user.Mobile = *req.Mobile
	}
	if req.Category != nil {
		user.Category = *req.Category
	}
	switch {
	case req.DateOfBirth != nil:
		dob, err := parseDate("date_of_birth", *req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		user.DateOfBirth = dob
	case req.ClearDateOfBirth:
		user.DateOfBirth = nil
	}
	if req.Password != nil {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashed
	}

	if err := s.users.Update(ctx, user); err != nil {
		if verr := duplicateToValidation(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to update user in repository: %w", err)
	}
	return user, nil
}

func (s *authService) findForRecovery(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, fieldError("email", "The selected email is invalid.")
	}
	return user, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.findForRecovery(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.otps.Issue(ctx, user)
	if err != nil {
		return err
	}

	if err := s.deliverer.DeliverOTP(ctx, user.Email, code); err != nil {
		s.log.Error(ctx, "otp delivery failed", "user_id", user.ID, "error", err)
		// a code the user never received must not block the next request
		if clearErr := s.otps.Clear(context.WithoutCancel(ctx), user); clearErr != nil {
			s.log.Error(ctx, "failed to clear undelivered otp", "user_id", user.ID, "error", clearErr)
		}
		return ErrDeliveryFailed
	}

	s.log.Info(ctx, "otp issued", "user_id", user.ID, "expires_at", user.OTPExpiresAt)
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.findForRecovery(ctx, email)
	if err != nil {
		return err
	}
	return s.otps.Consume(ctx, user, otp)
}

func (s *authService) ResetPassword(ctx context.Context, email, password string) error {
	if _, err := s.findForRecovery(ctx, email); err != nil {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	ok, err := s.users.ResetPassword(ctx, email, hashed, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetNotVerified
	}
	return nil
}
