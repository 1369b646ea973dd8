package service

import (
	"context"
	"testing"

	"skillhub/internal/model"
	"skillhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linkKey struct{ user, sub int }

type fakeLinks struct {
	links map[linkKey]bool
}

func newFakeLinks() *fakeLinks { return &fakeLinks{links: map[linkKey]bool{}} }

func (f *fakeLinks) Add(_ context.Context, userID, subcategoryID int) error {
	k := linkKey{userID, subcategoryID}
	if f.links[k] {
		return repository.ErrConflict
	}
	f.links[k] = true
	return nil
}

func (f *fakeLinks) Remove(_ context.Context, userID, subcategoryID int) (bool, error) {
	k := linkKey{userID, subcategoryID}
	ok := f.links[k]
	delete(f.links, k)
	return ok, nil
}

func (f *fakeLinks) Toggle(ctx context.Context, userID, subcategoryID int) (bool, error) {
	removed, _ := f.Remove(ctx, userID, subcategoryID)
	if removed {
		return false, nil
	}
	return true, f.Add(ctx, userID, subcategoryID)
}

func (f *fakeLinks) List(_ context.Context, userID int) ([]model.LibraryItem, error) {
	items := []model.LibraryItem{}
	for k := range f.links {
		if k.user == userID {
			items = append(items, model.LibraryItem{SubcategoryID: k.sub})
		}
	}
	return items, nil
}

type fakeMyCourses struct {
	courses []model.MyCourse
}

func (f *fakeMyCourses) Create(_ context.Context, mc *model.MyCourse) error {
	for _, c := range f.courses {
		if c.UserID == mc.UserID && c.SubcategoryID == mc.SubcategoryID {
			return repository.ErrConflict
		}
	}
	f.courses = append(f.courses, *mc)
	return nil
}

func (f *fakeMyCourses) ListByUser(_ context.Context, userID int) ([]model.MyCourse, error) {
	out := []model.MyCourse{}
	for _, c := range f.courses {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func newLibraryFixture(t *testing.T) (LibraryService, *fakeLinks, *fakeLinks) {
	t.Helper()
	categories := newFakeCategoryRepo("Programming")
	subs := newFakeSubcategoryRepo(categories)
	rate := 19.99
	require.NoError(t, subs.Create(context.Background(), &model.Subcategory{
		CategoryID: 1,
		Name:       "Go Basics",
		Rate:       &rate,
		Modules:    []model.Module{{ModuleID: "module_a", Questions: []model.Question{}}},
	}))
	cart, favorites := newFakeLinks(), newFakeLinks()
	return NewLibraryService(subs, cart, favorites, &fakeMyCourses{}), cart, favorites
}

func TestLibraryService_Cart(t *testing.T) {
	svc, _, _ := newLibraryFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.AddToCart(ctx, 1, 1))
	assert.ErrorIs(t, svc.AddToCart(ctx, 1, 1), ErrAlreadyExists)
	assert.ErrorIs(t, svc.AddToCart(ctx, 1, 42), ErrNotFound)

	items, err := svc.Cart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.RemoveFromCart(ctx, 1, 1))
	assert.ErrorIs(t, svc.RemoveFromCart(ctx, 1, 1), ErrNotFound)
}

func TestLibraryService_ToggleFavorite(t *testing.T) {
	svc, _, _ := newLibraryFixture(t)
	ctx := context.Background()

	added, err := svc.ToggleFavorite(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.ToggleFavorite(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, added)

	assert.ErrorIs(t, svc.RemoveFavorite(ctx, 1, 1), ErrNotFound)
	_, err = svc.ToggleFavorite(ctx, 1, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibraryService_AddMyCourse(t *testing.T) {
	svc, _, _ := newLibraryFixture(t)
	ctx := context.Background()

	mc, err := svc.AddMyCourse(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "Programming", mc.CategoryName)
	assert.Equal(t, "Go Basics", mc.SubcategoryName)
	assert.Equal(t, 19.99, *mc.Rate)
	require.Len(t, mc.Modules, 1)

	_, err = svc.AddMyCourse(ctx, 3, 1)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	list, err := svc.MyCourses(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
