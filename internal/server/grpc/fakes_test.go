package grpc

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/services"
)

// ---- fakes ----

type fakeVerifier map[string]string

func (f fakeVerifier) UserID(token string) (string, error) {
	if token == "expired" {
		return "", common.ErrTokenExpired
	}
	if uid, ok := f[token]; ok {
		return uid, nil
	}
	return "", common.ErrInvalidToken
}

type fakePlans struct {
	PlanService

	mu        sync.Mutex
	lastActor services.Actor
	created   models.Content
	plan      *models.Plan
	err       error
}

func (f *fakePlans) CreatePlan(_ context.Context, ownerID, title, idea string, content models.Content) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = content
	if f.err != nil {
		return nil, f.err
	}
	return &models.Plan{ID: "p1", OwnerID: ownerID, Title: title, Idea: idea, Content: content, TotalVersions: 1, CurrentVersion: 1}, nil
}

func (f *fakePlans) GetPlan(_ context.Context, actor services.Actor, planID string) (*models.Plan, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastActor = actor
	if f.err != nil {
		return nil, "", f.err
	}
	return f.plan, common.PermissionView, nil
}

func (f *fakePlans) SavePlan(_ context.Context, actor services.Actor, planID string, base int, title string, content models.Content) (*models.Plan, *models.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastActor = actor
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.Plan{ID: planID, Title: title, TotalVersions: base + 1}, &models.Version{PlanID: planID, VersionNumber: base + 1}, nil
}

func (f *fakePlans) ListPlans(_ context.Context, ownerID string) ([]*models.Plan, error) {
	return []*models.Plan{{ID: "p1", OwnerID: ownerID}}, f.err
}

type fakeShares struct {
	ShareService
	links []*models.ShareLink
	err   error
}

func (f *fakeShares) ShareURL(token string) string { return "https://forge.example/shared/" + token }

func (f *fakeShares) GetShareByToken(_ context.Context, token string) (*models.ShareLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ShareLink{ID: "s1", PlanID: "p1", Token: token, Permission: common.PermissionView, Active: true, AccessCount: 1}, nil
}

func (f *fakeShares) GetShareLinks(_ context.Context, ownerID, planID string) ([]*models.ShareLink, error) {
	return f.links, f.err
}

type fakePresence struct {
	PresenceService

	mu         sync.Mutex
	heartbeats []string
	heartbeatErr error
	onPlan     func(*models.Plan)
	onCollab   func()
	onClosed   func(error)
	subscribed chan struct{}
	stopped    chan struct{}
	err        error
}

func newFakePresence() *fakePresence {
	return &fakePresence{subscribed: make(chan struct{}), stopped: make(chan struct{})}
}

func (f *fakePresence) UpdateLastSeen(_ context.Context, actor services.Actor, planID, id string) error {
	if f.heartbeatErr != nil {
		return f.heartbeatErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeats = append(f.heartbeats, planID+"/"+id)
	return nil
}

func (f *fakePresence) SubscribeToPlan(_ context.Context, actor services.Actor, planID string, onPlan func(*models.Plan), onCollab func(), onClosed func(error)) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.onPlan, f.onCollab, f.onClosed = onPlan, onCollab, onClosed
	f.mu.Unlock()
	close(f.subscribed)
	var once sync.Once
	return func() { once.Do(func() { close(f.stopped) }) }, nil
}

type fakeChat struct {
	ChatService
	reply *models.ChatReply
	err   error
}

func (f *fakeChat) SendMessage(context.Context, string, []models.ChatMessage) (*models.ChatReply, error) {
	return f.reply, f.err
}

func newTestServer(svc Services) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.NopLogger{}, svc, fakeVerifier{"good": "user-1"})
}
