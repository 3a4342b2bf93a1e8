package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ideaforge/internal/timex"
	"github.com/google/uuid"
)

// VersionService is the version ledger: append-only snapshots per plan.
type VersionService struct {
	store
	logger logging.Logger
}

func NewVersionService(db *sql.DB, rm repomanager.RepositoryManager, clock timex.Clock, l logging.Logger) *VersionService {
	return &VersionService{store: newStore(db, rm, clock), logger: l.With("module", "version_service")}
}

// CreateVersion appends snapshot number versionNumber and moves the plan's
// counters to it. versionNumber must be exactly total_versions+1, otherwise
// common.ErrVersionConflict is returned and nothing is written.
func (s *VersionService) CreateVersion(ctx context.Context, planID string, versionNumber int, title string, content models.Content, summary string) (*models.Version, error) {
	var v *models.Version
	err := s.withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		plan, err := s.repomanager.Plans(tx).Get(ctx, planID)
		if err != nil {
			return err
		}
		v, err = s.appendVersion(ctx, tx, plan, versionNumber, title, content, summary)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// appendVersion runs inside the caller's transaction. The counter update goes
// first: it takes the plan row lock and fails fast for a stale number.
func (s store) appendVersion(ctx context.Context, tx dbx.DBTX, plan *models.Plan, versionNumber int, title string, content models.Content, summary string) (*models.Version, error) {
	if versionNumber != plan.TotalVersions+1 {
		return nil, common.ErrVersionConflict
	}

	now := s.now()
	if err := s.repomanager.Plans(tx).AdvanceVersion(ctx, plan.ID, versionNumber, now); err != nil {
		return nil, err
	}

	v := &models.Version{
		ID:             uuid.NewString(),
		PlanID:         plan.ID,
		OwnerID:        plan.OwnerID,
		VersionNumber:  versionNumber,
		Title:          title,
		Content:        content,
		ChangesSummary: summary,
		CreatedAt:      now,
	}
	if err := s.repomanager.Versions(tx).Create(ctx, v); err != nil {
		return nil, err
	}

	plan.CurrentVersion = versionNumber
	plan.TotalVersions = versionNumber
	plan.UpdatedAt = now
	return v, nil
}

// GetVersions returns the plan's snapshots, newest first.
func (s *VersionService) GetVersions(ctx context.Context, actor Actor, planID string) ([]*models.Version, error) {
	if _, _, err := s.authorize(ctx, s.db, actor, planID, accessView); err != nil {
		return nil, err
	}
	return s.repomanager.Versions(s.db).ListByPlan(ctx, planID)
}

func (s *VersionService) GetVersion(ctx context.Context, actor Actor, planID string, versionNumber int) (*models.Version, error) {
	if _, _, err := s.authorize(ctx, s.db, actor, planID, accessView); err != nil {
		return nil, err
	}
	return s.repomanager.Versions(s.db).Get(ctx, planID, versionNumber)
}

// DeleteVersion removes one snapshot. Sibling numbers and plan counters stay as they are.
func (s *VersionService) DeleteVersion(ctx context.Context, ownerID, versionID string) error {
	repo := s.repomanager.Versions(s.db)
	v, err := repo.GetByID(ctx, versionID)
	if err != nil {
		return err
	}
	if _, _, err := s.authorize(ctx, s.db, Actor{UserID: ownerID}, v.PlanID, accessOwner); err != nil {
		return err
	}
	if err := repo.Delete(ctx, versionID); err != nil {
		return err
	}
	s.logger.Info(ctx, "version deleted", "plan_id", v.PlanID, "version", v.VersionNumber)
	return nil
}

// Compare loads two snapshots of one plan and diffs them.
func (s *VersionService) Compare(ctx context.Context, actor Actor, planID string, older, newer int) ([]models.Diff, string, error) {
	if _, _, err := s.authorize(ctx, s.db, actor, planID, accessView); err != nil {
		return nil, "", err
	}
	repo := s.repomanager.Versions(s.db)
	a, err := repo.Get(ctx, planID, older)
	if err != nil {
		return nil, "", err
	}
	b, err := repo.Get(ctx, planID, newer)
	if err != nil {
		return nil, "", err
	}
	diffs := CompareVersions(a.Content, b.Content)
	return diffs, GenerateChangesSummary(diffs), nil
}

// previousContent returns the latest snapshot's content, or the plan's own
// content when that snapshot was deleted.
func (s store) previousContent(ctx context.Context, tx dbx.DBTX, plan *models.Plan) (models.Content, error) {
	v, err := s.repomanager.Versions(tx).Get(ctx, plan.ID, plan.TotalVersions)
	if errors.Is(err, common.ErrorNotFound) {
		return plan.Content, nil
	}
	if err != nil {
		return models.Content{}, err
	}
	return v.Content, nil
}
