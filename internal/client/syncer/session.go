// Package syncer keeps one viewer's copy of a shared plan live: it resolves
// the share token, joins as a collaborator, heartbeats on an interval and
// applies plan updates pushed by the server.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/client/client"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// ErrStopped is returned by Start on a session that was already stopped.
var ErrStopped = errors.New("session stopped")

// API is the part of client.Client a session needs.
type API interface {
	GetShareByToken(ctx context.Context, token string) (*models.ShareLink, error)
	GetPlan(ctx context.Context, planID string) (*models.Plan, string, error)
	UpdatePlan(ctx context.Context, planID string, patch models.PlanPatch) (*models.Plan, *models.Version, error)
	JoinPlan(ctx context.Context, planID, sessionID string) (*models.Collaborator, error)
	ListCollaborators(ctx context.Context, planID string) ([]*models.Collaborator, error)
	Heartbeat(ctx context.Context, planID, collaboratorID string) error
	Watch(ctx context.Context, planID string) (client.EventStream, error)
}

type ChangeKind int

const (
	ChangePlan ChangeKind = iota
	ChangeCollaborators
	ChangeConnection
)

func (k ChangeKind) String() string {
	switch k {
	case ChangePlan:
		return "plan"
	case ChangeCollaborators:
		return "collaborators"
	case ChangeConnection:
		return "connection"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// View is the state derived from the current plan snapshot.
type View struct {
	Title      string
	TechStack  []models.TechStackItem
	Roadmap    []models.RoadmapPhase
	Structure  []string
	Deployment []string
	PitchDeck  []models.PitchSlide
}

func deriveView(p *models.Plan) View {
	if p == nil {
		return View{}
	}
	return View{
		Title:      p.Title,
		TechStack:  append([]models.TechStackItem(nil), p.Content.TechStack...),
		Roadmap:    append([]models.RoadmapPhase(nil), p.Content.Roadmap...),
		Structure:  append([]string(nil), p.Content.Structure...),
		Deployment: append([]string(nil), p.Content.Deployment...),
		PitchDeck:  append([]models.PitchSlide(nil), p.Content.PitchDeck...),
	}
}

// retryDelay is how long the watch loop waits before reopening a dropped
// stream. Tests shorten it.
var retryDelay = 2 * time.Second

type Session struct {
	api       API
	token     string
	sessionID string
	interval  time.Duration
	logger    logging.Logger

	mu            sync.RWMutex
	link          *models.ShareLink
	plan          *models.Plan
	view          View
	permission    string
	collaborator  *models.Collaborator
	collaborators []*models.Collaborator
	connected     bool
	stopped       bool
	listeners     []func(ChangeKind)

	stopHeartbeat func() error
	unsubscribe   func() error
	wg            sync.WaitGroup
}

// New prepares a session for the share token. interval <= 0 falls back to
// common.HeartbeatInterval.
func New(api API, token, sessionID string, interval time.Duration, l logging.Logger) *Session {
	if interval <= 0 {
		interval = common.HeartbeatInterval
	}
	return &Session{
		api:       api,
		token:     token,
		sessionID: sessionID,
		interval:  interval,
		logger:    l.With("module", "syncer", "session_id", sessionID),
	}
}

// OnChange registers fn to be called after each state change. fn runs on
// the goroutine that applied the change and must not block.
func (s *Session) OnChange(fn func(ChangeKind)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify(kind ChangeKind) {
	s.mu.RLock()
	listeners := append([]func(ChangeKind){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(kind)
	}
}

func (s *Session) withToken(ctx context.Context) context.Context {
	return client.WithShareToken(ctx, s.token)
}

// Start validates the token, loads the plan, joins and starts the heartbeat
// and watch loops. The loops outlive ctx and run until Stop.
func (s *Session) Start(ctx context.Context) error {
	if s.isStopped() {
		return ErrStopped
	}
	ctx = s.withToken(ctx)

	link, err := s.api.GetShareByToken(ctx, s.token)
	if err != nil {
		return fmt.Errorf("resolve share: %w", err)
	}

	plan, permission, err := s.api.GetPlan(ctx, link.PlanID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	me, err := s.api.JoinPlan(ctx, plan.ID, s.sessionID)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}

	collaborators, err := s.api.ListCollaborators(ctx, plan.ID)
	if err != nil {
		s.logger.Warn(ctx, "initial collaborator list failed", "error", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	watchCtx, cancelWatch := context.WithCancel(runCtx)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		cancelWatch()
		cancel()
		return ErrStopped
	}
	s.link = link
	s.plan = plan
	s.view = deriveView(plan)
	s.permission = permission
	s.collaborator = me
	s.collaborators = collaborators
	s.connected = true
	s.stopHeartbeat = func() error { cancel(); return nil }
	s.unsubscribe = func() error { cancelWatch(); return nil }
	s.wg.Add(2)
	s.mu.Unlock()

	go s.heartbeatLoop(runCtx, me.ID, plan.ID)
	go s.watchLoop(watchCtx, plan.ID)

	s.logger.Info(ctx, "joined shared plan", "plan_id", plan.ID, "permission", permission)

	s.notify(ChangeConnection)
	return nil
}

// Stop tears the session down. Both the heartbeat and the subscription are
// released even when one of them fails. Calling Stop again is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	wasConnected := s.connected
	s.connected = false
	steps := []func() error{s.stopHeartbeat, s.unsubscribe}
	s.mu.Unlock()

	var errs []error
	for _, step := range steps {
		if step == nil {
			continue
		}
		if err := runStep(step); err != nil {
			errs = append(errs, err)
		}
	}

	s.wg.Wait()

	if wasConnected {
		s.notify(ChangeConnection)
	}
	return errors.Join(errs...)
}

func runStep(step func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("teardown panic: %v", r)
		}
	}()
	return step()
}

func (s *Session) isStopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopped
}

// accessLost ends the loops once the server no longer honours the share
// token (revoked or expired link). Stop is still needed to release the session.
func (s *Session) accessLost(ctx context.Context, err error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return
	}
	s.connected = false
	steps := []func() error{s.stopHeartbeat, s.unsubscribe}
	s.mu.Unlock()

	for _, step := range steps {
		if step != nil {
			_ = runStep(step)
		}
	}
	s.logger.Warn(ctx, "share access lost", "error", err)
	s.notify(ChangeConnection)
}

// Connected reports whether the session is joined. It is a logical flag and
// stays true while the transport reconnects; it turns false on Stop or when
// the share link stops working.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Link returns the share link the session was opened with, nil before Start.
func (s *Session) Link() *models.ShareLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.link
}

func (s *Session) Plan() *models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Session) Permission() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}

func (s *Session) Collaborators() []*models.Collaborator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Collaborator(nil), s.collaborators...)
}

// UpdateIdea writes patch through to the server. View-only sessions get
// common.ErrorForbidden without a round trip.
func (s *Session) UpdateIdea(ctx context.Context, patch models.PlanPatch) (*models.Plan, error) {
	s.mu.RLock()
	plan, permission := s.plan, s.permission
	s.mu.RUnlock()

	if plan == nil {
		return nil, common.ErrorNotFound
	}
	if permission != common.PermissionEdit {
		return nil, common.ErrorForbidden
	}

	updated, _, err := s.api.UpdatePlan(s.withToken(ctx), plan.ID, patch)
	if err != nil {
		return nil, err
	}
	s.setPlan(updated)
	return updated, nil
}

// setPlan replaces the snapshot. Older versions arriving late are ignored.
func (s *Session) setPlan(p *models.Plan) {
	if p == nil {
		return
	}
	s.mu.Lock()
	if s.plan != nil && p.TotalVersions < s.plan.TotalVersions {
		s.mu.Unlock()
		return
	}
	s.plan = p
	s.view = deriveView(p)
	s.mu.Unlock()
	s.notify(ChangePlan)
}

func (s *Session) refreshCollaborators(ctx context.Context, planID string) {
	list, err := s.api.ListCollaborators(ctx, planID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn(ctx, "collaborator refresh failed", "error", err)
		}
		return
	}
	s.mu.Lock()
	s.collaborators = list
	s.mu.Unlock()
	s.notify(ChangeCollaborators)
}

func (s *Session) heartbeatLoop(ctx context.Context, collaboratorID, planID string) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.api.Heartbeat(ctx, planID, collaboratorID); err != nil && ctx.Err() == nil {
				if errors.Is(err, common.ErrorNotFound) {
					s.accessLost(ctx, err)
					return
				}
				s.logger.Warn(ctx, "heartbeat failed", "error", err)
			}
			s.refreshCollaborators(ctx, planID)
			s.resyncPlan(ctx, planID)
		}
	}
}

// resyncPlan picks up saves whose events never reached this session.
func (s *Session) resyncPlan(ctx context.Context, planID string) {
	plan, _, err := s.api.GetPlan(ctx, planID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, common.ErrorNotFound) {
			s.accessLost(ctx, err)
			return
		}
		s.logger.Warn(ctx, "plan resync failed", "error", err)
		return
	}

	s.mu.RLock()
	newer := s.plan == nil || plan.TotalVersions > s.plan.TotalVersions
	s.mu.RUnlock()
	if newer {
		s.setPlan(plan)
	}
}

func (s *Session) watchLoop(ctx context.Context, planID string) {
	defer s.wg.Done()

	for {
		err := s.consume(ctx, planID)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, common.ErrorNotFound) {
			s.accessLost(ctx, err)
			return
		}
		s.logger.Warn(ctx, "watch stream dropped, retrying", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

func (s *Session) consume(ctx context.Context, planID string) error {
	stream, err := s.api.Watch(ctx, planID)
	if err != nil {
		return err
	}
	for {
		ev, err := stream.Recv()
		if err != nil {
			return err
		}
		switch ev.Type {
		case models.EventPlanUpdated:
			s.setPlan(ev.Plan)
		case models.EventCollaboratorsChanged:
			s.refreshCollaborators(ctx, planID)
		}
	}
}
