package service

import (
	"context"

	"skillhub/internal/model"
	"skillhub/internal/repository"
)

// ProgressService records which modules a user has completed
type ProgressService interface {
	Complete(ctx context.Context, userID int, moduleID string, isPassed bool) (*model.ModuleStatus, error)
	List(ctx context.Context, userID int) ([]model.ModuleStatus, error)
}

type progressService struct {
	repo repository.ProgressRepository
}

func NewProgressService(repo repository.ProgressRepository) ProgressService {
	return &progressService{repo: repo}
}

func (s *progressService) Complete(ctx context.Context, userID int, moduleID string, isPassed bool) (*model.ModuleStatus, error) {
	return s.repo.Upsert(ctx, userID, moduleID, isPassed)
}

func (s *progressService) List(ctx context.Context, userID int) ([]model.ModuleStatus, error) {
	return s.repo.ListByUser(ctx, userID)
}
