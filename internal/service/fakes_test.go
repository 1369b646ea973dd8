package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"skillhub/internal/model"
	"skillhub/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository with the same conditional update semantics as the SQL one.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*model.User
	nextID int
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*model.User), nextID: 1}
}

func (r *fakeUserRepo) copyOf(u *model.User) *model.User {
	c := *u
	return &c
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return &repository.DuplicateFieldError{Field: "email"}
		}
		if u.Mobile == user.Mobile {
			return &repository.DuplicateFieldError{Field: "mobile"}
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = r.copyOf(user)
	return nil
}

func (r *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if match(u) {
			return r.copyOf(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByMobile(_ context.Context, mobile string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Mobile == mobile })
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []model.User{}
	for id := 1; id < r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != user.ID && u.Mobile == user.Mobile {
			return &repository.DuplicateFieldError{Field: "mobile"}
		}
	}
	stored, ok := r.users[user.ID]
	if !ok {
		return errors.New("not found")
	}
	stored.Name = user.Name
	stored.Mobile = user.Mobile
	stored.Category = user.Category
	stored.DateOfBirth = user.DateOfBirth
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) SetOTPIfInactive(_ context.Context, userID int, otp string, expiresAt, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || (u.OTPExpiresAt != nil && !u.OTPExpiresAt.Before(now)) {
		return false, nil
	}
	u.OTP = &otp
	u.OTPExpiresAt = &expiresAt
	return true, nil
}

func (r *fakeUserRepo) ClearOTP(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.OTP = nil
		u.OTPExpiresAt = nil
	}
	return nil
}

func (r *fakeUserRepo) ConsumeOTP(_ context.Context, userID int, otp string, resetAllowedUntil time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.OTP == nil || *u.OTP != otp {
		return false, nil
	}
	u.OTP = nil
	u.OTPExpiresAt = nil
	u.ResetAllowedUntil = &resetAllowedUntil
	return true, nil
}

func (r *fakeUserRepo) ResetPassword(_ context.Context, email, passwordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.ResetAllowedUntil != nil && !u.ResetAllowedUntil.Before(now) {
			u.PasswordHash = passwordHash
			u.ResetAllowedUntil = nil
			return true, nil
		}
	}
	return false, nil
}

// stored returns the persisted state of a user, bypassing copies handed to services.
func (r *fakeUserRepo) stored(id int) model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

type fakeDeliverer struct {
	mu    sync.Mutex
	calls []string
	codes []string
	err   error
}

func (d *fakeDeliverer) DeliverOTP(_ context.Context, address, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, address)
	d.codes = append(d.codes, code)
	return d.err
}

type failingRevocationStore struct{}

func (failingRevocationStore) Revoke(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingRevocationStore) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingRevocationStore) Clear(context.Context, string) error {
	return nil
}
