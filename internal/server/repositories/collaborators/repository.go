package collaborators

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

type Repository interface {
	Join(ctx context.Context, c *models.Collaborator) (*models.Collaborator, bool, error)
	TouchLastSeen(ctx context.Context, planID, id string, now time.Time) error
	ListActive(ctx context.Context, planID string, since time.Time) ([]*models.Collaborator, error)
}
