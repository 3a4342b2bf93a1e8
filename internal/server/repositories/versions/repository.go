package versions

import (
	"context"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// Repository stores immutable plan snapshots. There is no update operation.
type Repository interface {
	Create(ctx context.Context, v *models.Version) error
	ListByPlan(ctx context.Context, planID string) ([]*models.Version, error)
	Get(ctx context.Context, planID string, versionNumber int) (*models.Version, error)
	GetByID(ctx context.Context, id string) (*models.Version, error)
	Delete(ctx context.Context, id string) error
}
