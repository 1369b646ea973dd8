package repository

import (
	"context"
	"fmt"

	"skillhub/internal/model"
)

// ProgressRepository records per-user module completion
type ProgressRepository interface {
	Upsert(ctx context.Context, userID int, moduleID string, isPassed bool) (*model.ModuleStatus, error)
	ListByUser(ctx context.Context, userID int) ([]model.ModuleStatus, error)
}

type progressRepository struct {
	db DBTX
}

func NewProgressRepository(db DBTX) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, userID int, moduleID string, isPassed bool) (*model.ModuleStatus, error) {
	sql := `INSERT INTO module_user_statuses (user_id, module_id, is_passed) VALUES ($1, $2, $3)
            ON CONFLICT (user_id, module_id) DO UPDATE SET is_passed = EXCLUDED.is_passed, updated_at = NOW()
            RETURNING module_id, is_passed, created_at, updated_at`
	s := &model.ModuleStatus{}
	if err := r.db.QueryRow(ctx, sql, userID, moduleID, isPassed).Scan(&s.ModuleID, &s.IsPassed, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, translateWriteError("record module status", err)
	}
	return s, nil
}

func (r *progressRepository) ListByUser(ctx context.Context, userID int) ([]model.ModuleStatus, error) {
	rows, err := r.db.Query(ctx, `SELECT module_id, is_passed, created_at, updated_at
            FROM module_user_statuses WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list module statuses: %w", err)
	}
	defer rows.Close()

	statuses := []model.ModuleStatus{}
	for rows.Next() {
		var s model.ModuleStatus
		if err := rows.Scan(&s.ModuleID, &s.IsPassed, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan module status: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating module status rows: %w", err)
	}
	return statuses, nil
}
