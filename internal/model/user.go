package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DateLayout is the wire format for calendar dates such as date_of_birth.
const DateLayout = "2006-01-02"

// User represents a registered account, including its password recovery state.
type User struct {
	ID                int
	Name              string
	Email             string
	Mobile            string
	PasswordHash      string
	Category          string
	DateOfBirth       *time.Time
	Role              string
	OTP               *string
	OTPExpiresAt      *time.Time
	ResetAllowedUntil *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasActiveOTP reports whether an unexpired OTP is set at the given instant.
func (u *User) HasActiveOTP(now time.Time) bool {
	return u.OTPExpiresAt != nil && !now.After(*u.OTPExpiresAt)
}

// UserProfile is the public projection of a User. Secrets and OTP state never leave the service.
type UserProfile struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Mobile      string  `json:"mobile"`
	DateOfBirth *string `json:"date_of_birth"`
	Category    string  `json:"category"`
	Role        string  `json:"role"`
}

// Profile builds the public projection of the user.
func (u *User) Profile() UserProfile {
	p := UserProfile{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Mobile:   u.Mobile,
		Category: u.Category,
		Role:     u.Role,
	}
	if u.DateOfBirth != nil {
		dob := u.DateOfBirth.Format(DateLayout)
		p.DateOfBirth = &dob
	}
	return p
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Mobile               string `json:"mobile" binding:"required,max=20"`
	Password             string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	Category             string `json:"category" binding:"required"`
	DateOfBirth          string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries only the fields the caller wants to change.
// A nil pointer means "leave as is". DateOfBirth may be sent as JSON null to clear it,
// which is tracked by ClearDateOfBirth.
type UpdateProfileRequest struct {
	Name                 *string `json:"name" binding:"omitempty,min=1,max=255"`
	Mobile               *string `json:"mobile" binding:"omitempty,min=1,max=20"`
	Category             *string `json:"category" binding:"omitempty,min=1"`
	DateOfBirth          *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Password             *string `json:"password" binding:"omitempty,min=6,max=72"`
	PasswordConfirmation *string `json:"password_confirmation"`
	ClearDateOfBirth     bool    `json:"-"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=4,numeric"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}
