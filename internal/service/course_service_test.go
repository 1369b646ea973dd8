package service

import (
	"context"
	"testing"

	"skillhub/internal/model"
	"skillhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCourseRepo struct {
	courses   map[int]*model.Course
	purchases map[int][]model.PurchasedCourse
	nextID    int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[int]*model.Course{}, purchases: map[int][]model.PurchasedCourse{}, nextID: 1}
}

func (r *fakeCourseRepo) List(context.Context) ([]model.Course, error) {
	out := []model.Course{}
	for id := 1; id < r.nextID; id++ {
		if c, ok := r.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) FindByID(_ context.Context, id int) (*model.Course, error) {
	if c, ok := r.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCourseRepo) Create(_ context.Context, c *model.Course) error {
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) Update(_ context.Context, c *model.Course) error {
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int) (bool, error) {
	_, ok := r.courses[id]
	delete(r.courses, id)
	return ok, nil
}

func (r *fakeCourseRepo) Purchase(_ context.Context, userID int, c *model.Course) error {
	for _, p := range r.purchases[userID] {
		if p.ID == c.ID {
			return repository.ErrConflict
		}
	}
	r.purchases[userID] = append(r.purchases[userID], model.PurchasedCourse{ID: c.ID, Name: c.Course})
	return nil
}

func (r *fakeCourseRepo) ListPurchased(_ context.Context, userID int) ([]model.PurchasedCourse, error) {
	return append([]model.PurchasedCourse{}, r.purchases[userID]...), nil
}

func TestCourseService_CRUD(t *testing.T) {
	svc := NewCourseService(newFakeCourseRepo(), newFakeUserRepo())
	ctx := context.Background()
	rate, discount := 100.0, 10.0

	c, err := svc.Create(ctx, model.CourseRequest{Course: "Algebra", Rate: &rate, Discount: &discount})
	require.NoError(t, err)
	assert.Equal(t, 100.0, c.Rate)

	newRate := 80.0
	updated, err := svc.Update(ctx, c.ID, model.CourseRequest{Course: "Algebra II", Rate: &newRate})
	require.NoError(t, err)
	assert.Equal(t, "Algebra II", updated.Course)
	assert.Nil(t, updated.Discount)

	_, err = svc.Update(ctx, 99, model.CourseRequest{Course: "x", Rate: &newRate})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), ErrNotFound)
}

func TestCourseService_BuyAndPurchases(t *testing.T) {
	users := newFakeUserRepo()
	alice := &model.User{Email: "alice@example.com", Mobile: "1"}
	require.NoError(t, users.Create(context.Background(), alice))
	svc := NewCourseService(newFakeCourseRepo(), users)
	ctx := context.Background()
	rate := 50.0

	c, err := svc.Create(ctx, model.CourseRequest{Course: "Biology", Rate: &rate})
	require.NoError(t, err)

	require.NoError(t, svc.Buy(ctx, alice.ID, c.ID))
	assert.ErrorIs(t, svc.Buy(ctx, alice.ID, c.ID), ErrAlreadyExists)
	assert.ErrorIs(t, svc.Buy(ctx, alice.ID, 404), ErrNotFound)

	purchased, err := svc.Purchases(ctx, &Identity{UserID: alice.ID, Role: model.RoleUser}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.PurchasedCourse{{ID: c.ID, Name: "Biology"}}, purchased)

	_, err = svc.Purchases(ctx, &Identity{UserID: 77, Role: model.RoleUser}, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Purchases(ctx, &Identity{UserID: 77, Role: model.RoleAdmin}, 55)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
