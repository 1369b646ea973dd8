package repository

import (
	"context"
	"errors"
	"fmt"

	"skillhub/internal/model"

	"github.com/jackc/pgx/v5"
)

// CourseRepository defines operations for courses and their purchases
type CourseRepository interface {
	List(ctx context.Context) ([]model.Course, error)
	FindByID(ctx context.Context, id int) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id int) (bool, error)

	// Purchase records that the user bought the course. ErrConflict if already bought.
	Purchase(ctx context.Context, userID int, course *model.Course) error
	ListPurchased(ctx context.Context, userID int) ([]model.PurchasedCourse, error)
}

type courseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.db.Query(ctx, `SELECT id, course, rate, discount, purchase, created_at, updated_at FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Course, &c.Rate, &c.Discount, &c.Purchase, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	return courses, nil
}

func (r *courseRepository) FindByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	err := r.db.QueryRow(ctx, `SELECT id, course, rate, discount, purchase, created_at, updated_at FROM courses WHERE id = $1`, id).
		Scan(&c.ID, &c.Course, &c.Rate, &c.Discount, &c.Purchase, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return c, nil
}

func (r *courseRepository) Create(ctx context.Context, c *model.Course) error {
	sql := `INSERT INTO courses (course, rate, discount, purchase) VALUES ($1, $2, $3, $4)
            RETURNING id, created_at, updated_at`
	if err := r.db.QueryRow(ctx, sql, c.Course, c.Rate, c.Discount, c.Purchase).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *courseRepository) Update(ctx context.Context, c *model.Course) error {
	sql := `UPDATE courses SET course = $1, rate = $2, discount = $3, purchase = $4 WHERE id = $5 RETURNING updated_at`
	if err := r.db.QueryRow(ctx, sql, c.Course, c.Rate, c.Discount, c.Purchase, c.ID).Scan(&c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete course: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *courseRepository) Purchase(ctx context.Context, userID int, c *model.Course) error {
	_, err := r.db.Exec(ctx, `INSERT INTO course_purchases (user_id, course_id, name) VALUES ($1, $2, $3)`,
		userID, c.ID, c.Course)
	if err != nil {
		return translateWriteError("record purchase", err)
	}
	return nil
}

func (r *courseRepository) ListPurchased(ctx context.Context, userID int) ([]model.PurchasedCourse, error) {
	rows, err := r.db.Query(ctx, `SELECT c.id, c.course FROM course_purchases p
            JOIN courses c ON c.id = p.course_id WHERE p.user_id = $1 ORDER BY p.created_at, p.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchased courses: %w", err)
	}
	defer rows.Close()

	purchased := []model.PurchasedCourse{}
	for rows.Next() {
		var pc model.PurchasedCourse
		if err := rows.Scan(&pc.ID, &pc.Name); err != nil {
			return nil, fmt.Errorf("failed to scan purchased course: %w", err)
		}
		purchased = append(purchased, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchased course rows: %w", err)
	}
	return purchased, nil
}
