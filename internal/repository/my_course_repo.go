package repository

import (
	"context"
	"fmt"

	"skillhub/internal/model"
)

// MyCourseRepository tracks the subcategories a user enrolled in
type MyCourseRepository interface {
	Create(ctx context.Context, course *model.MyCourse) error
	ListByUser(ctx context.Context, userID int) ([]model.MyCourse, error)
}

type myCourseRepository struct {
	db DBTX
}

func NewMyCourseRepository(db DBTX) MyCourseRepository {
	return &myCourseRepository{db: db}
}

func (r *myCourseRepository) Create(ctx context.Context, mc *model.MyCourse) error {
	sql := `INSERT INTO my_courses (user_id, category_id, category_name, subcategory_id, subcategory_name)
            VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err := r.db.QueryRow(ctx, sql, mc.UserID, mc.CategoryID, mc.CategoryName, mc.SubcategoryID, mc.SubcategoryName).
		Scan(&mc.CreatedAt)
	if err != nil {
		return translateWriteError("store my course", err)
	}
	return nil
}

func (r *myCourseRepository) ListByUser(ctx context.Context, userID int) ([]model.MyCourse, error) {
	rows, err := r.db.Query(ctx, `SELECT m.user_id, m.category_id, m.category_name, m.subcategory_id, m.subcategory_name,
            s.rate, s.images, s.modules, s.final_module, m.created_at
            FROM my_courses m LEFT JOIN subcategories s ON s.id = m.subcategory_id
            WHERE m.user_id = $1 ORDER BY m.created_at, m.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list my courses: %w", err)
	}
	defer rows.Close()

	courses := []model.MyCourse{}
	for rows.Next() {
		var mc model.MyCourse
		var modules, finalModule []byte
		if err := rows.Scan(&mc.UserID, &mc.CategoryID, &mc.CategoryName, &mc.SubcategoryID, &mc.SubcategoryName,
			&mc.Rate, &mc.SubcategoryImage, &modules, &finalModule, &mc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan my course: %w", err)
		}
		if err := decodeModules(modules, finalModule, &mc.Modules, &mc.FinalModule); err != nil {
			return nil, err
		}
		courses = append(courses, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating my course rows: %w", err)
	}
	return courses, nil
}
