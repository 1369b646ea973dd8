package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillhub/internal/model"

	"github.com/jackc/pgx/v5"
)

// UserRepository is the credential store: user rows plus their OTP and reset state.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByMobile(ctx context.Context, mobile string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error

	// SetOTPIfInactive stores the code only if no unexpired OTP exists at now.
	// It reports false when another OTP is still active.
	SetOTPIfInactive(ctx context.Context, userID int, otp string, expiresAt, now time.Time) (bool, error)
	ClearOTP(ctx context.Context, userID int) error
	// ConsumeOTP clears the OTP if it still equals otp and opens a password reset window.
	ConsumeOTP(ctx context.Context, userID int, otp string, resetAllowedUntil time.Time) (bool, error)
	// ResetPassword replaces the hash only while the reset window is open, closing it.
	ResetPassword(ctx context.Context, email, passwordHash string, now time.Time) (bool, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, mobile, password_hash, category, date_of_birth, role,
	otp, otp_expires_at, reset_allowed_until, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Mobile, &u.PasswordHash, &u.Category, &u.DateOfBirth, &u.Role,
		&u.OTP, &u.OTPExpiresAt, &u.ResetAllowedUntil, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func duplicateUserField(err error) error {
	code, constraint := pgErrorCode(err)
	if code != pgUniqueViolation {
		return nil
	}
	switch constraint {
	case "users_email_key":
		return &DuplicateFieldError{Field: "email"}
	case "users_mobile_key":
		return &DuplicateFieldError{Field: "mobile"}
	}
	return &DuplicateFieldError{Field: constraint}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (name, email, mobile, password_hash, category, date_of_birth, role)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, user.Name, user.Email, user.Mobile, user.PasswordHash, user.Category, user.DateOfBirth, user.Role).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dup := duplicateUserField(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1`, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found is not an error for this method's contract, service layer handles it
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", where, err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email address
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

// FindByMobile retrieves a user by mobile number
func (r *userRepository) FindByMobile(ctx context.Context, mobile string) (*model.User, error) {
	return r.findOne(ctx, "mobile", mobile)
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Update persists profile fields and the password hash.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	sql := `UPDATE users SET name = $1, mobile = $2, category = $3, date_of_birth = $4, password_hash = $5
            WHERE id = $6 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, user.Name, user.Mobile, user.Category, user.DateOfBirth, user.PasswordHash, user.ID).
		Scan(&user.UpdatedAt)
	if err != nil {
		if dup := duplicateUserField(err); dup != nil {
			return dup
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to update user %d: not found", user.ID)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) SetOTPIfInactive(ctx context.Context, userID int, otp string, expiresAt, now time.Time) (bool, error) {
	sql := `UPDATE users SET otp = $1, otp_expires_at = $2
            WHERE id = $3 AND (otp_expires_at IS NULL OR otp_expires_at < $4)`
	tag, err := r.db.Exec(ctx, sql, otp, expiresAt, userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to set otp: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *userRepository) ClearOTP(ctx context.Context, userID int) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET otp = NULL, otp_expires_at = NULL WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear otp: %w", err)
	}
	return nil
}

func (r *userRepository) ConsumeOTP(ctx context.Context, userID int, otp string, resetAllowedUntil time.Time) (bool, error) {
	sql := `UPDATE users SET otp = NULL, otp_expires_at = NULL, reset_allowed_until = $1
            WHERE id = $2 AND otp = $3`
	tag, err := r.db.Exec(ctx, sql, resetAllowedUntil, userID, otp)
	if err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *userRepository) ResetPassword(ctx context.Context, email, passwordHash string, now time.Time) (bool, error) {
	sql := `UPDATE users SET password_hash = $1, reset_allowed_until = NULL
            WHERE email = $2 AND reset_allowed_until IS NOT NULL AND reset_allowed_until >= $3`
	tag, err := r.db.Exec(ctx, sql, passwordHash, email, now)
	if err != nil {
		return false, fmt.Errorf("failed to reset password: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
