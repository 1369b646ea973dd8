package service

import (
	"context"
	"errors"

	"skillhub/internal/model"
	"skillhub/internal/repository"
)

// LibraryService covers the per-user collections of subcategories: cart, favorites and enrolled courses.
type LibraryService interface {
	AddToCart(ctx context.Context, userID, subcategoryID int) error
	RemoveFromCart(ctx context.Context, userID, subcategoryID int) error
	Cart(ctx context.Context, userID int) ([]model.LibraryItem, error)

	// ToggleFavorite reports whether the subcategory is a favorite after the call.
	ToggleFavorite(ctx context.Context, userID, subcategoryID int) (bool, error)
	RemoveFavorite(ctx context.Context, userID, subcategoryID int) error
	Favorites(ctx context.Context, userID int) ([]model.LibraryItem, error)

	AddMyCourse(ctx context.Context, userID, subcategoryID int) (*model.MyCourse, error)
	MyCourses(ctx context.Context, userID int) ([]model.MyCourse, error)
}

type libraryService struct {
	subcategories repository.SubcategoryRepository
	cart          repository.CartRepository
	favorites     repository.FavoriteRepository
	myCourses     repository.MyCourseRepository
}

func NewLibraryService(
	subcategories repository.SubcategoryRepository,
	cart repository.CartRepository,
	favorites repository.FavoriteRepository,
	myCourses repository.MyCourseRepository,
) LibraryService {
	return &libraryService{subcategories: subcategories, cart: cart, favorites: favorites, myCourses: myCourses}
}

func (s *libraryService) subcategory(ctx context.Context, id int) (*model.Subcategory, error) {
	sub, err := s.subcategories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

func linkError(err error) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return ErrAlreadyExists
	case errors.Is(err, repository.ErrReferenceNotFound):
		return ErrNotFound
	}
	return err
}

func (s *libraryService) AddToCart(ctx context.Context, userID, subcategoryID int) error {
	if _, err := s.subcategory(ctx, subcategoryID); err != nil {
		return err
	}
	if err := s.cart.Add(ctx, userID, subcategoryID); err != nil {
		return linkError(err)
	}
	return nil
}

func (s *libraryService) RemoveFromCart(ctx context.Context, userID, subcategoryID int) error {
	removed, err := s.cart.Remove(ctx, userID, subcategoryID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *libraryService) Cart(ctx context.Context, userID int) ([]model.LibraryItem, error) {
	return s.cart.List(ctx, userID)
}

func (s *libraryService) ToggleFavorite(ctx context.Context, userID, subcategoryID int) (bool, error) {
	if _, err := s.subcategory(ctx, subcategoryID); err != nil {
		return false, err
	}
	added, err := s.favorites.Toggle(ctx, userID, subcategoryID)
	if err != nil {
		return false, linkError(err)
	}
	return added, nil
}

func (s *libraryService) RemoveFavorite(ctx context.Context, userID, subcategoryID int) error {
	removed, err := s.favorites.Remove(ctx, userID, subcategoryID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *libraryService) Favorites(ctx context.Context, userID int) ([]model.LibraryItem, error) {
	return s.favorites.List(ctx, userID)
}

func (s *libraryService) AddMyCourse(ctx context.Context, userID, subcategoryID int) (*model.MyCourse, error) {
	sub, err := s.subcategory(ctx, subcategoryID)
	if err != nil {
		return nil, err
	}
	mc := &model.MyCourse{
		UserID:           userID,
		CategoryID:       sub.CategoryID,
		CategoryName:     sub.CategoryName,
		SubcategoryID:    sub.ID,
		SubcategoryName:  sub.Name,
		Rate:             sub.Rate,
		SubcategoryImage: sub.Images,
		Modules:          sub.Modules,
		FinalModule:      sub.FinalModule,
	}
	if err := s.myCourses.Create(ctx, mc); err != nil {
		return nil, linkError(err)
	}
	return mc, nil
}

func (s *libraryService) MyCourses(ctx context.Context, userID int) ([]model.MyCourse, error) {
	return s.myCourses.ListByUser(ctx, userID)
}
