package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/changefeed"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ideaforge/internal/timex"
	"github.com/google/uuid"
)

// PresenceService tracks who is looking at a shared plan. Staleness is
// decided at query time; nothing is ever evicted.
type PresenceService struct {
	store
	broker changefeed.Broker
	window time.Duration
	logger logging.Logger
}

func NewPresenceService(db *sql.DB, rm repomanager.RepositoryManager, broker changefeed.Broker, clock timex.Clock, l logging.Logger) *PresenceService {
	return &PresenceService{
		store:  newStore(db, rm, clock),
		broker: broker,
		window: common.PresenceWindow,
		logger: l.With("module", "presence_service"),
	}
}

// Join checks the actor's access to the plan and joins with the permission
// the actor actually holds.
func (s *PresenceService) Join(ctx context.Context, actor Actor, planID, sessionID string) (*models.Collaborator, error) {
	_, perm, err := s.authorize(ctx, s.db, actor, planID, accessView)
	if err != nil {
		return nil, err
	}
	return s.JoinAsCollaborator(ctx, planID, perm, sessionID, actor.UserID)
}

// JoinAsCollaborator upserts the presence row for (planID, sessionID). A
// repeated join refreshes last_seen_at and returns the existing row.
func (s *PresenceService) JoinAsCollaborator(ctx context.Context, planID, permission, sessionID, userID string) (*models.Collaborator, error) {
	if sessionID == "" || !common.ValidPermission(permission) {
		return nil, common.ErrorValidation
	}

	now := s.now()
	c, inserted, err := s.repomanager.Collaborators(s.db).Join(ctx, &models.Collaborator{
		ID:         uuid.NewString(),
		PlanID:     planID,
		UserID:     userID,
		SessionID:  sessionID,
		Permission: permission,
		LastSeenAt: now,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	if inserted {
		s.logger.Info(ctx, "collaborator joined", "plan_id", planID, "session_id", sessionID)
		if err := s.broker.Publish(ctx, models.Event{Type: models.EventCollaboratorsChanged, PlanID: planID}); err != nil {
			s.logger.Warn(ctx, "failed to publish collaborator change", "plan_id", planID, "error", err)
		}
	}
	return c, nil
}

// GetActiveCollaborators returns collaborators seen within the presence
// window, most recently seen first.
func (s *PresenceService) GetActiveCollaborators(ctx context.Context, actor Actor, planID string) ([]*models.Collaborator, error) {
	if _, _, err := s.authorize(ctx, s.db, actor, planID, accessView); err != nil {
		return nil, err
	}
	return s.repomanager.Collaborators(s.db).ListActive(ctx, planID, s.now().Add(-s.window))
}

// UpdateLastSeen refreshes the heartbeat timestamp of a collaborator of
// planID. The actor needs view access to the plan; once that holds, store
// failures are logged only.
func (s *PresenceService) UpdateLastSeen(ctx context.Context, actor Actor, planID, collaboratorID string) error {
	if _, _, err := s.authorize(ctx, s.db, actor, planID, accessView); err != nil {
		return err
	}
	if err := s.repomanager.Collaborators(s.db).TouchLastSeen(ctx, planID, collaboratorID, s.now()); err != nil {
		s.logger.Warn(ctx, "failed to update last seen", "plan_id", planID, "collaborator_id", collaboratorID, "error", err)
	}
	return nil
}

// SubscribeToPlan delivers plan updates to onPlanUpdate and collaborator
// changes to onCollaboratorChange from a background goroutine. The returned
// function stops delivery; calling it again does nothing.
//
// A share-token actor is re-authorized before every delivery. Once the link
// is revoked, expired or downgraded below view, the subscription is closed
// and onClosed receives the reason.
func (s *PresenceService) SubscribeToPlan(ctx context.Context, actor Actor, planID string, onPlanUpdate func(*models.Plan), onCollaboratorChange func(), onClosed func(error)) (func(), error) {
	if _, _, err := s.authorize(ctx, s.db, actor, planID, accessView); err != nil {
		return nil, err
	}

	sub, err := s.broker.Subscribe(ctx, planID)
	if err != nil {
		return nil, err
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := sub.Close(); err != nil {
				s.logger.Warn(context.Background(), "failed to close subscription", "plan_id", planID, "error", err)
			}
		})
	}

	go func() {
		for ev := range sub.Events() {
			if err := s.stillAllowed(ctx, actor, planID); err != nil {
				if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorForbidden) {
					s.logger.Info(ctx, "share access lost, closing subscription", "plan_id", planID)
					unsubscribe()
					if onClosed != nil {
						onClosed(err)
					}
					return
				}
				s.logger.Warn(ctx, "access check failed, event skipped", "plan_id", planID, "error", err)
				continue
			}

			switch ev.Type {
			case models.EventPlanUpdated:
				if ev.Plan != nil && onPlanUpdate != nil {
					onPlanUpdate(ev.Plan)
				}
			case models.EventCollaboratorsChanged:
				if onCollaboratorChange != nil {
					onCollaboratorChange()
				}
			}
		}
	}()

	return unsubscribe, nil
}

// stillAllowed re-checks view access for share-token actors. Owners keep
// access for the lifetime of the subscription.
func (s *PresenceService) stillAllowed(ctx context.Context, actor Actor, planID string) error {
	if actor.ShareToken == "" {
		return nil
	}
	_, _, err := s.authorize(ctx, s.db, actor, planID, accessView)
	return err
}

// GenerateSessionID returns a fresh anonymous session identifier.
func (s *PresenceService) GenerateSessionID() string {
	return common.NewSessionID()
}
