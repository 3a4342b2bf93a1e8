package plans

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// Repository persists plans. Version counters only move through AdvanceVersion.
type Repository interface {
	Create(ctx context.Context, p *models.Plan) error
	Get(ctx context.Context, id string) (*models.Plan, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Plan, error)
	UpdateContent(ctx context.Context, p *models.Plan) error
	AdvanceVersion(ctx context.Context, id string, versionNumber int, now time.Time) error
	Delete(ctx context.Context, id string) error
}
