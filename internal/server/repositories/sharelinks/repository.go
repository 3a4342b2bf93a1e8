package sharelinks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.ShareLink) error
	GetByID(ctx context.Context, id string) (*models.ShareLink, error)
	FindUsableByToken(ctx context.Context, token string, now time.Time) (*models.ShareLink, error)
	RecordAccess(ctx context.Context, id string, now time.Time) (int, error)
	ListActiveByPlan(ctx context.Context, planID string) ([]*models.ShareLink, error)
	Deactivate(ctx context.Context, id string, now time.Time) error
	UpdatePermission(ctx context.Context, id, permission string, now time.Time) error
	Delete(ctx context.Context, id string) error
}
