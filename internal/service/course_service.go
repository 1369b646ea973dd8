package service

import (
	"context"
	"errors"
	"fmt"

	"skillhub/internal/model"
	"skillhub/internal/repository"
)

// CourseService manages shop courses and the purchases made by users
type CourseService interface {
	List(ctx context.Context) ([]model.Course, error)
	Get(ctx context.Context, id int) (*model.Course, error)
	Create(ctx context.Context, req model.CourseRequest) (*model.Course, error)
	Update(ctx context.Context, id int, req model.CourseRequest) (*model.Course, error)
	Delete(ctx context.Context, id int) error

	Buy(ctx context.Context, userID, courseID int) error
	Purchases(ctx context.Context, requester *Identity, userID int) ([]model.PurchasedCourse, error)
}

type courseService struct {
	repo  repository.CourseRepository
	users repository.UserRepository
}

func NewCourseService(repo repository.CourseRepository, users repository.UserRepository) CourseService {
	return &courseService{repo: repo, users: users}
}

func (s *courseService) List(ctx context.Context) ([]model.Course, error) {
	return s.repo.List(ctx)
}

func (s *courseService) Get(ctx context.Context, id int) (*model.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	return course, nil
}

func (s *courseService) Create(ctx context.Context, req model.CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Course:   req.Course,
		Rate:     *req.Rate,
		Discount: req.Discount,
		Purchase: req.Purchase,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course in repo: %w", err)
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id int, req model.CourseRequest) (*model.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Course = req.Course
	course.Rate = *req.Rate
	course.Discount = req.Discount
	course.Purchase = req.Purchase
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course in repo: %w", err)
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id int) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *courseService) Buy(ctx context.Context, userID, courseID int) error {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return err
	}
	if err := s.repo.Purchase(ctx, userID, course); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return ErrAlreadyExists
		case errors.Is(err, repository.ErrReferenceNotFound):
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *courseService) Purchases(ctx context.Context, requester *Identity, userID int) ([]model.PurchasedCourse, error) {
	if requester.Role != model.RoleAdmin && requester.UserID != userID {
		return nil, ErrForbidden
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.repo.ListPurchased(ctx, userID)
}
