package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"skillhub/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_Add(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items (user_id, subcategory_id)`)).
		WithArgs(1, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items (user_id, subcategory_id)`)).
		WithArgs(1, 2).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "cart_items_user_subcategory_key"})
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items (user_id, subcategory_id)`)).
		WithArgs(1, 404).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	assert.NoError(t, repo.Add(context.Background(), 1, 2))
	assert.ErrorIs(t, repo.Add(context.Background(), 1, 2), ErrConflict)
	assert.ErrorIs(t, repo.Add(context.Background(), 1, 404), ErrReferenceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_RemoveMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE user_id = $1 AND subcategory_id = $2`)).
		WithArgs(1, 2).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	removed, err := repo.Remove(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCartRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)
	rate := 49.5
	image := "subcategory/a.png"

	mock.ExpectQuery(regexp.QuoteMeta(`FROM cart_items l`)).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "id", "name", "rate", "images"}).
			AddRow(2, "Go Basics", 1, "Programming", &rate, &image))

	items, err := repo.List(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Go Basics", items[0].SubcategoryName)
	assert.Equal(t, "Programming", items[0].CategoryName)
	assert.Equal(t, 49.5, *items[0].Rate)
}

func TestFavoriteRepository_Toggle(t *testing.T) {
	mock := newMock(t)
	repo := NewFavoriteRepository(mock)

	// first toggle: nothing to delete, so insert
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM favorites`)).
		WithArgs(1, 2).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO favorites`)).
		WithArgs(1, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// second toggle: row deleted
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM favorites`)).
		WithArgs(1, 2).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	added, err := repo.Toggle(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Toggle(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, added)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubcategoryRepository_FindByID_DecodesModules(t *testing.T) {
	mock := newMock(t)
	repo := NewSubcategoryRepository(mock)
	now := time.Now()

	modules := []byte(`[{"module_id":"module_1","module_name":"Intro","video_url":null,"video_file":"videos/a.mp4","is_passed":false,"questions":[]}]`)
	final := []byte(`{"module_id":"final_module_1","questions":[{"question_text":"2+2?","option_1":"3","option_2":"4","option_3":"5","option_4":"6","correct_option":"option_2"}]}`)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.id = $1`)).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "category_id", "name", "name", "rate", "images", "modules", "final_module", "created_at", "updated_at"}).
			AddRow(5, 1, "Programming", "Go Basics", nil, nil, modules, final, now, now))

	sub, err := repo.FindByID(context.Background(), 5)

	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Len(t, sub.Modules, 1)
	assert.Equal(t, "module_1", sub.Modules[0].ModuleID)
	require.NotNil(t, sub.Modules[0].VideoFile)
	assert.Equal(t, "videos/a.mp4", *sub.Modules[0].VideoFile)
	require.NotNil(t, sub.FinalModule)
	assert.Equal(t, "option_2", sub.FinalModule.Questions[0].CorrectOption)
	assert.Equal(t, "Programming", sub.CategoryName)
}

func TestSubcategoryRepository_Create_MissingCategory(t *testing.T) {
	mock := newMock(t)
	repo := NewSubcategoryRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO subcategories`)).
		WithArgs(9, "Go", pgxmock.AnyArg(), pgxmock.AnyArg(), []byte(`[]`), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), &model.Subcategory{CategoryID: 9, Name: "Go"})
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestCourseRepository_Purchase(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository(mock)
	course := &model.Course{ID: 3, Course: "Algebra"}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO course_purchases`)).
		WithArgs(1, 3, "Algebra").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO course_purchases`)).
		WithArgs(1, 3, "Algebra").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	assert.NoError(t, repo.Purchase(context.Background(), 1, course))
	assert.ErrorIs(t, repo.Purchase(context.Background(), 1, course), ErrConflict)
}

func TestCourseRepository_ListPurchased(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM course_purchases p`)).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "course"}).AddRow(3, "Algebra").AddRow(4, "Biology"))

	purchased, err := repo.ListPurchased(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []model.PurchasedCourse{{ID: 3, Name: "Algebra"}, {ID: 4, Name: "Biology"}}, purchased)
}

func TestProgressRepository_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewProgressRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (user_id, module_id) DO UPDATE`)).
		WithArgs(1, "module_abc", true).
		WillReturnRows(pgxmock.NewRows([]string{"module_id", "is_passed", "created_at", "updated_at"}).
			AddRow("module_abc", true, now, now))

	status, err := repo.Upsert(context.Background(), 1, "module_abc", true)

	require.NoError(t, err)
	assert.Equal(t, "module_abc", status.ModuleID)
	assert.True(t, status.IsPassed)
}
