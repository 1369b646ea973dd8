package repository

import (
	"context"
	"fmt"

	"skillhub/internal/model"
)

// CartRepository defines operations on a user's cart
type CartRepository interface {
	Add(ctx context.Context, userID, subcategoryID int) error
	Remove(ctx context.Context, userID, subcategoryID int) (bool, error)
	List(ctx context.Context, userID int) ([]model.LibraryItem, error)
}

// FavoriteRepository defines operations on a user's favorites
type FavoriteRepository interface {
	// Toggle adds the favorite if absent and removes it otherwise. It reports whether it is now a favorite.
	Toggle(ctx context.Context, userID, subcategoryID int) (bool, error)
	Remove(ctx context.Context, userID, subcategoryID int) (bool, error)
	List(ctx context.Context, userID int) ([]model.LibraryItem, error)
}

// subcategoryList is a user to subcategory link table. cart_items and favorites share its shape.
type subcategoryList struct {
	db    DBTX
	table string
}

type cartRepository struct{ subcategoryList }

type favoriteRepository struct{ subcategoryList }

func NewCartRepository(db DBTX) CartRepository {
	return &cartRepository{subcategoryList{db: db, table: "cart_items"}}
}

func NewFavoriteRepository(db DBTX) FavoriteRepository {
	return &favoriteRepository{subcategoryList{db: db, table: "favorites"}}
}

func (l subcategoryList) add(ctx context.Context, userID, subcategoryID int) error {
	_, err := l.db.Exec(ctx, `INSERT INTO `+l.table+` (user_id, subcategory_id) VALUES ($1, $2)`, userID, subcategoryID)
	if err != nil {
		return translateWriteError("add to "+l.table, err)
	}
	return nil
}

func (l subcategoryList) remove(ctx context.Context, userID, subcategoryID int) (bool, error) {
	tag, err := l.db.Exec(ctx, `DELETE FROM `+l.table+` WHERE user_id = $1 AND subcategory_id = $2`, userID, subcategoryID)
	if err != nil {
		return false, fmt.Errorf("failed to remove from %s: %w", l.table, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (l subcategoryList) list(ctx context.Context, userID int) ([]model.LibraryItem, error) {
	rows, err := l.db.Query(ctx, `SELECT s.id, s.name, c.id, c.name, s.rate, s.images
            FROM `+l.table+` l
            JOIN subcategories s ON s.id = l.subcategory_id
            JOIN categories c ON c.id = s.category_id
            WHERE l.user_id = $1 ORDER BY l.created_at, l.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", l.table, err)
	}
	defer rows.Close()

	items := []model.LibraryItem{}
	for rows.Next() {
		var it model.LibraryItem
		if err := rows.Scan(&it.SubcategoryID, &it.SubcategoryName, &it.CategoryID, &it.CategoryName, &it.Rate, &it.Image); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", l.table, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", l.table, err)
	}
	return items, nil
}

func (r *cartRepository) Add(ctx context.Context, userID, subcategoryID int) error {
	return r.add(ctx, userID, subcategoryID)
}

func (r *cartRepository) Remove(ctx context.Context, userID, subcategoryID int) (bool, error) {
	return r.remove(ctx, userID, subcategoryID)
}

func (r *cartRepository) List(ctx context.Context, userID int) ([]model.LibraryItem, error) {
	return r.list(ctx, userID)
}

func (r *favoriteRepository) Toggle(ctx context.Context, userID, subcategoryID int) (bool, error) {
	removed, err := r.remove(ctx, userID, subcategoryID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	_, err = r.db.Exec(ctx, `INSERT INTO favorites (user_id, subcategory_id) VALUES ($1, $2)
            ON CONFLICT (user_id, subcategory_id) DO NOTHING`, userID, subcategoryID)
	if err != nil {
		return false, translateWriteError("add favorite", err)
	}
	return true, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, subcategoryID int) (bool, error) {
	return r.remove(ctx, userID, subcategoryID)
}

func (r *favoriteRepository) List(ctx context.Context, userID int) ([]model.LibraryItem, error) {
	return r.list(ctx, userID)
}
