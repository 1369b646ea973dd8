package repository

import (
	"context"
	"errors"
	"fmt"

	"skillhub/internal/model"

	"github.com/jackc/pgx/v5"
)

// CategoryRepository defines operations for category data
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int) (bool, error)
}

type categoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, image, created_at, updated_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) findOne(ctx context.Context, where string, arg any) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRow(ctx, `SELECT id, name, image, created_at, updated_at FROM categories WHERE `+where+` = $1`, arg).
		Scan(&c.ID, &c.Name, &c.Image, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category by %s: %w", where, err)
	}
	return c, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id int) (*model.Category, error) {
	return r.findOne(ctx, "id", id)
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	return r.findOne(ctx, "name", name)
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	err := r.db.QueryRow(ctx, `INSERT INTO categories (name, image) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		c.Name, c.Image).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return translateWriteError("create category", err)
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, c *model.Category) error {
	err := r.db.QueryRow(ctx, `UPDATE categories SET name = $1, image = $2 WHERE id = $3 RETURNING updated_at`,
		c.Name, c.Image, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		return translateWriteError("update category", err)
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
