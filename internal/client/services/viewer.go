package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ideaforge/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ideaforge/internal/client/repositories/recent"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/timex"
)

// ViewerService keeps what a share-link viewer needs across CLI runs: a
// stable anonymous session id and the list of recently opened links.
type ViewerService interface {
	SessionID(ctx context.Context) (string, error)
	Remember(ctx context.Context, link *models.ShareLink, plan *models.Plan) error
	Recent(ctx context.Context, limit int) ([]recent.Share, error)
	Forget(ctx context.Context, token string) error
}

// newSessionID is a seam for tests.
var newSessionID = common.NewSessionID

type viewerService struct {
	db    *sql.DB
	clock timex.Clock
}

func NewViewerService(db *sql.DB, clock timex.Clock) ViewerService {
	return &viewerService{db: db, clock: clock}
}

// SessionID returns the stored session id, creating one on first use.
func (v *viewerService) SessionID(ctx context.Context) (string, error) {
	repo := metadata.NewSQLiteRepository(v.db)

	id, ok, err := repo.Get(ctx, metadata.KeySessionID)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}

	id = newSessionID()
	if err := repo.Set(ctx, metadata.KeySessionID, id); err != nil {
		return "", err
	}
	return id, nil
}

func (v *viewerService) Remember(ctx context.Context, link *models.ShareLink, plan *models.Plan) error {
	return recent.NewSQLiteRepository(v.db).Touch(ctx, recent.Share{
		Token:      link.Token,
		PlanID:     plan.ID,
		Title:      plan.Title,
		Permission: link.Permission,
		OpenedAt:   v.clock.Now(),
	})
}

func (v *viewerService) Recent(ctx context.Context, limit int) ([]recent.Share, error) {
	return recent.NewSQLiteRepository(v.db).List(ctx, limit)
}

func (v *viewerService) Forget(ctx context.Context, token string) error {
	return recent.NewSQLiteRepository(v.db).Forget(ctx, token)
}
