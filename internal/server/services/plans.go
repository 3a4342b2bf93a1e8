package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/changefeed"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ideaforge/internal/timex"
	"github.com/google/uuid"
)

// PlanService persists plans. Every save appends a version and notifies
// live viewers through the change feed.
type PlanService struct {
	store
	broker changefeed.Broker
	logger logging.Logger
}

func NewPlanService(db *sql.DB, rm repomanager.RepositoryManager, broker changefeed.Broker, clock timex.Clock, l logging.Logger) *PlanService {
	return &PlanService{
		store:  newStore(db, rm, clock),
		broker: broker,
		logger: l.With("module", "plan_service"),
	}
}

// CreatePlan stores a new plan together with version 1.
func (s *PlanService) CreatePlan(ctx context.Context, ownerID, title, idea string, content models.Content) (*models.Plan, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}

	now := s.now()
	plan := &models.Plan{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Idea:      idea,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Plans(tx).Create(ctx, plan); err != nil {
			return err
		}
		_, err := s.appendVersion(ctx, tx, plan, 1, title, content, common.InitialVersionSummary)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "plan created", "plan_id", plan.ID, "owner_id", ownerID)
	return plan, nil
}

// SavePlan writes new content and appends the next version. The next number
// is computed from the plan as read inside the transaction; a concurrent
// writer that got there first makes this call fail with ErrVersionConflict.
//
// baseVersion, when positive, is the total_versions the caller last saw.
// A mismatch is reported as a conflict before anything is written.
func (s *PlanService) SavePlan(ctx context.Context, actor Actor, planID string, baseVersion int, title string, content models.Content) (*models.Plan, *models.Version, error) {
	var plan *models.Plan
	var version *models.Version

	err := s.withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		plan, _, err = s.authorize(ctx, tx, actor, planID, accessEdit)
		if err != nil {
			return err
		}
		if baseVersion > 0 && baseVersion != plan.TotalVersions {
			return common.ErrVersionConflict
		}

		previous, err := s.previousContent(ctx, tx, plan)
		if err != nil {
			return err
		}
		summary := GenerateChangesSummary(CompareVersions(previous, content))

		version, err = s.appendVersion(ctx, tx, plan, plan.TotalVersions+1, title, content, summary)
		if err != nil {
			return err
		}

		plan.Title = title
		plan.Content = content
		return s.repomanager.Plans(tx).UpdateContent(ctx, plan)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "plan saved", "plan_id", plan.ID, "version", version.VersionNumber, "summary", version.ChangesSummary)
	s.publish(ctx, models.Event{Type: models.EventPlanUpdated, PlanID: plan.ID, Plan: plan})
	return plan, version, nil
}

// UpdatePlan applies a partial update on top of the current plan and saves it
// as a new version. The patch is merged against the plan read here, so a save
// that lands in between turns into ErrVersionConflict. An empty patch returns
// the plan unchanged.
func (s *PlanService) UpdatePlan(ctx context.Context, actor Actor, planID string, patch models.PlanPatch) (*models.Plan, *models.Version, error) {
	plan, _, err := s.authorize(ctx, s.db, actor, planID, accessEdit)
	if err != nil {
		return nil, nil, err
	}
	if patch.Empty() {
		return plan, nil, nil
	}
	title, content := patch.Apply(plan)
	return s.SavePlan(ctx, actor, planID, plan.TotalVersions, title, content)
}

// GetPlan returns the plan if the actor may view it.
func (s *PlanService) GetPlan(ctx context.Context, actor Actor, planID string) (*models.Plan, string, error) {
	return s.authorize(ctx, s.db, actor, planID, accessView)
}

func (s *PlanService) ListPlans(ctx context.Context, ownerID string) ([]*models.Plan, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	return s.repomanager.Plans(s.db).ListByOwner(ctx, ownerID)
}

// DeletePlan removes the plan with its versions and share links.
func (s *PlanService) DeletePlan(ctx context.Context, ownerID, planID string) error {
	if _, _, err := s.authorize(ctx, s.db, Actor{UserID: ownerID}, planID, accessOwner); err != nil {
		return err
	}
	if err := s.repomanager.Plans(s.db).Delete(ctx, planID); err != nil {
		return err
	}
	s.logger.Info(ctx, "plan deleted", "plan_id", planID)
	return nil
}

// publish is best-effort: the write already succeeded.
func (s *PlanService) publish(ctx context.Context, ev models.Event) {
	if err := s.broker.Publish(ctx, ev); err != nil {
		s.logger.Warn(ctx, "failed to publish event", "plan_id", ev.PlanID, "type", ev.Type, "error", err)
	}
}
