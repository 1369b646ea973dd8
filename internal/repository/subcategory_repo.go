package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skillhub/internal/model"

	"github.com/jackc/pgx/v5"
)

// SubcategoryRepository stores subcategories with their modules and final quiz as JSONB.
type SubcategoryRepository interface {
	List(ctx context.Context) ([]model.Subcategory, error)
	ListByCategory(ctx context.Context, categoryID int) ([]model.Subcategory, error)
	FindByID(ctx context.Context, id int) (*model.Subcategory, error)
	Create(ctx context.Context, sub *model.Subcategory) error
	Update(ctx context.Context, sub *model.Subcategory) error
	Delete(ctx context.Context, id int) (bool, error)
}

type subcategoryRepository struct {
	db DBTX
}

func NewSubcategoryRepository(db DBTX) SubcategoryRepository {
	return &subcategoryRepository{db: db}
}

const subcategorySelect = `SELECT s.id, s.category_id, c.name, s.name, s.rate, s.images, s.modules, s.final_module,
	s.created_at, s.updated_at
	FROM subcategories s JOIN categories c ON c.id = s.category_id`

func scanSubcategory(row pgx.Row) (*model.Subcategory, error) {
	s := &model.Subcategory{}
	var modules, finalModule []byte
	err := row.Scan(&s.ID, &s.CategoryID, &s.CategoryName, &s.Name, &s.Rate, &s.Images, &modules, &finalModule,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeModules(modules, finalModule, &s.Modules, &s.FinalModule); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeModules(modules, finalModule []byte, dstModules *[]model.Module, dstFinal **model.FinalModule) error {
	*dstModules = []model.Module{}
	if len(modules) > 0 {
		if err := json.Unmarshal(modules, dstModules); err != nil {
			return fmt.Errorf("failed to decode modules: %w", err)
		}
	}
	if len(finalModule) > 0 && string(finalModule) != "null" {
		fm := &model.FinalModule{}
		if err := json.Unmarshal(finalModule, fm); err != nil {
			return fmt.Errorf("failed to decode final module: %w", err)
		}
		*dstFinal = fm
	}
	return nil
}

func encodeModules(sub *model.Subcategory) ([]byte, []byte, error) {
	mods := sub.Modules
	if mods == nil {
		mods = []model.Module{}
	}
	modules, err := json.Marshal(mods)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode modules: %w", err)
	}
	var finalModule []byte
	if sub.FinalModule != nil {
		if finalModule, err = json.Marshal(sub.FinalModule); err != nil {
			return nil, nil, fmt.Errorf("failed to encode final module: %w", err)
		}
	}
	return modules, finalModule, nil
}

func (r *subcategoryRepository) query(ctx context.Context, sql string, args ...any) ([]model.Subcategory, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	defer rows.Close()

	subs := []model.Subcategory{}
	for rows.Next() {
		s, err := scanSubcategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subcategory rows: %w", err)
	}
	return subs, nil
}

func (r *subcategoryRepository) List(ctx context.Context) ([]model.Subcategory, error) {
	return r.query(ctx, subcategorySelect+` ORDER BY s.id`)
}

func (r *subcategoryRepository) ListByCategory(ctx context.Context, categoryID int) ([]model.Subcategory, error) {
	return r.query(ctx, subcategorySelect+` WHERE s.category_id = $1 ORDER BY s.id`, categoryID)
}

func (r *subcategoryRepository) FindByID(ctx context.Context, id int) (*model.Subcategory, error) {
	s, err := scanSubcategory(r.db.QueryRow(ctx, subcategorySelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subcategory: %w", err)
	}
	return s, nil
}

func (r *subcategoryRepository) Create(ctx context.Context, sub *model.Subcategory) error {
	modules, finalModule, err := encodeModules(sub)
	if err != nil {
		return err
	}
	sql := `INSERT INTO subcategories (category_id, name, rate, images, modules, final_module)
            VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	err = r.db.QueryRow(ctx, sql, sub.CategoryID, sub.Name, sub.Rate, sub.Images, modules, finalModule).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return translateWriteError("create subcategory", err)
	}
	return nil
}

func (r *subcategoryRepository) Update(ctx context.Context, sub *model.Subcategory) error {
	modules, finalModule, err := encodeModules(sub)
	if err != nil {
		return err
	}
	sql := `UPDATE subcategories SET category_id = $1, name = $2, rate = $3, images = $4, modules = $5, final_module = $6
            WHERE id = $7 RETURNING updated_at`
	err = r.db.QueryRow(ctx, sql, sub.CategoryID, sub.Name, sub.Rate, sub.Images, modules, finalModule, sub.ID).
		Scan(&sub.UpdatedAt)
	if err != nil {
		return translateWriteError("update subcategory", err)
	}
	return nil
}

func (r *subcategoryRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete subcategory: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
