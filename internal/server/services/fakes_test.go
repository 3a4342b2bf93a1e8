package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/changefeed"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/collaborators"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/plans"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/sharelinks"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/versions"
	"github.com/dmitrijs2005/ideaforge/internal/timex"
)

// -------- in-memory repositories --------

// memDB mimics the Postgres repositories closely enough for service tests:
// counters, unique keys, cascades and the presence upsert.
type memDB struct {
	mu            sync.Mutex
	plans         map[string]models.Plan
	versions      map[string]models.Version
	links         map[string]models.ShareLink
	collaborators map[string]models.Collaborator

	recordAccessErr error
	touchErr        error
}

func newMemDB() *memDB {
	return &memDB{
		plans:         map[string]models.Plan{},
		versions:      map[string]models.Version{},
		links:         map[string]models.ShareLink{},
		collaborators: map[string]models.Collaborator{},
	}
}

type memRepoManager struct {
	repomanager.RepositoryManager
	m *memDB
}

func (r *memRepoManager) Plans(dbx.DBTX) plans.Repository                 { return memPlans{r.m} }
func (r *memRepoManager) Versions(dbx.DBTX) versions.Repository           { return memVersions{r.m} }
func (r *memRepoManager) ShareLinks(dbx.DBTX) sharelinks.Repository       { return memLinks{r.m} }
func (r *memRepoManager) Collaborators(dbx.DBTX) collaborators.Repository { return memCollaborators{r.m} }

type memPlans struct{ m *memDB }

func (r memPlans) Create(_ context.Context, p *models.Plan) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.plans[p.ID] = *p
	return nil
}

func (r memPlans) Get(_ context.Context, id string) (*models.Plan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.plans[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r memPlans) ListByOwner(_ context.Context, ownerID string) ([]*models.Plan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Plan
	for _, p := range r.m.plans {
		if p.OwnerID == ownerID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r memPlans) UpdateContent(_ context.Context, p *models.Plan) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.plans[p.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Title, cur.Content, cur.UpdatedAt = p.Title, p.Content, p.UpdatedAt
	r.m.plans[p.ID] = cur
	return nil
}

func (r memPlans) AdvanceVersion(_ context.Context, id string, n int, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.plans[id]
	if !ok || cur.TotalVersions != n-1 {
		return common.ErrVersionConflict
	}
	cur.CurrentVersion, cur.TotalVersions, cur.UpdatedAt = n, n, now
	r.m.plans[id] = cur
	return nil
}

func (r memPlans) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.plans[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.plans, id)
	for k, v := range r.m.versions {
		if v.PlanID == id {
			delete(r.m.versions, k)
		}
	}
	for k, l := range r.m.links {
		if l.PlanID == id {
			delete(r.m.links, k)
		}
	}
	for k, c := range r.m.collaborators {
		if c.PlanID == id {
			delete(r.m.collaborators, k)
		}
	}
	return nil
}

type memVersions struct{ m *memDB }

func (r memVersions) Create(_ context.Context, v *models.Version) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.versions {
		if existing.PlanID == v.PlanID && existing.VersionNumber == v.VersionNumber {
			return common.ErrVersionConflict
		}
	}
	r.m.versions[v.ID] = *v
	return nil
}

func (r memVersions) ListByPlan(_ context.Context, planID string) ([]*models.Version, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Version
	for _, v := range r.m.versions {
		if v.PlanID == planID {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (r memVersions) Get(_ context.Context, planID string, n int) (*models.Version, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, v := range r.m.versions {
		if v.PlanID == planID && v.VersionNumber == n {
			return &v, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memVersions) GetByID(_ context.Context, id string) (*models.Version, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.versions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &v, nil
}

func (r memVersions) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.versions[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.versions, id)
	return nil
}

type memLinks struct{ m *memDB }

func (r memLinks) Create(_ context.Context, s *models.ShareLink) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.links[s.ID] = *s
	return nil
}

func (r memLinks) GetByID(_ context.Context, id string) (*models.ShareLink, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.links[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &l, nil
}

func (r memLinks) FindUsableByToken(_ context.Context, token string, now time.Time) (*models.ShareLink, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, l := range r.m.links {
		if l.Token == token && l.Usable(now) {
			return &l, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memLinks) RecordAccess(_ context.Context, id string, now time.Time) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.recordAccessErr != nil {
		return 0, r.m.recordAccessErr
	}
	l, ok := r.m.links[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	l.AccessCount++
	l.LastAccessedAt = &now
	r.m.links[id] = l
	return l.AccessCount, nil
}

func (r memLinks) ListActiveByPlan(_ context.Context, planID string) ([]*models.ShareLink, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ShareLink
	for _, l := range r.m.links {
		if l.PlanID == planID && l.Active {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memLinks) Deactivate(_ context.Context, id string, now time.Time) error {
	return r.update(id, func(l *models.ShareLink) { l.Active = false; l.UpdatedAt = now })
}

func (r memLinks) UpdatePermission(_ context.Context, id, permission string, now time.Time) error {
	return r.update(id, func(l *models.ShareLink) { l.Permission = permission; l.UpdatedAt = now })
}

func (r memLinks) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.links[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.links, id)
	return nil
}

func (r memLinks) update(id string, fn func(*models.ShareLink)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.links[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&l)
	r.m.links[id] = l
	return nil
}

type memCollaborators struct{ m *memDB }

func (r memCollaborators) Join(_ context.Context, c *models.Collaborator) (*models.Collaborator, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, existing := range r.m.collaborators {
		if existing.PlanID == c.PlanID && existing.SessionID == c.SessionID {
			existing.LastSeenAt = c.LastSeenAt
			r.m.collaborators[id] = existing
			return &existing, false, nil
		}
	}
	r.m.collaborators[c.ID] = *c
	out := *c
	return &out, true, nil
}

func (r memCollaborators) TouchLastSeen(_ context.Context, planID, id string, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.touchErr != nil {
		return r.m.touchErr
	}
	c, ok := r.m.collaborators[id]
	if !ok || c.PlanID != planID {
		return common.ErrorNotFound
	}
	c.LastSeenAt = now
	r.m.collaborators[id] = c
	return nil
}

func (r memCollaborators) ListActive(_ context.Context, planID string, since time.Time) ([]*models.Collaborator, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Collaborator
	for _, c := range r.m.collaborators {
		if c.PlanID == planID && !c.LastSeenAt.Before(since) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeenAt.After(out[j].LastSeenAt) })
	return out, nil
}

func (m *memDB) collaboratorRows(planID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.collaborators {
		if c.PlanID == planID {
			n++
		}
	}
	return n
}

// -------- helpers --------

// noTx runs fn directly; the in-memory repos ignore the DBTX they get.
func noTx(ctx context.Context, _ *sql.DB, _ *sql.TxOptions, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	mem      *memDB
	clock    *timex.FakeClock
	broker   *changefeed.MemoryBroker
	plans    *PlanService
	versions *VersionService
	shares   *ShareService
	presence *PresenceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := newMemDB()
	rm := &memRepoManager{m: mem}
	clock := timex.NewFakeClock(t0)
	log := logging.NopLogger{}
	broker := changefeed.NewMemoryBroker(log)
	t.Cleanup(func() { _ = broker.Close() })

	f := &fixture{
		mem:      mem,
		clock:    clock,
		broker:   broker,
		plans:    NewPlanService(nil, rm, broker, clock, log),
		versions: NewVersionService(nil, rm, clock, log),
		shares:   NewShareService(nil, rm, clock, "https://ideaforge.example/", log),
		presence: NewPresenceService(nil, rm, broker, clock, log),
	}
	f.plans.withTx = noTx
	f.versions.withTx = noTx
	f.shares.withTx = noTx
	f.presence.withTx = noTx
	return f
}

const owner = "user-1"

func fitnessContent() models.Content {
	return models.Content{
		Description: "Book fitness classes at local gyms",
		TechStack: []models.TechStackItem{
			{Name: "React + TypeScript", Description: "UI", Category: "Frontend"},
			{Name: "Node.js + Express", Description: "API", Category: "Backend"},
		},
		Roadmap: []models.RoadmapPhase{
			{Phase: "Phase 1: Foundation & Setup", Duration: "2 weeks"},
		},
		Structure:  []string{"src/"},
		Deployment: []string{"Vercel"},
	}
}

func (f *fixture) createPlan(t *testing.T) *models.Plan {
	t.Helper()
	p, err := f.plans.CreatePlan(context.Background(), owner, "Fitness Booking App", "fitness booking", fitnessContent())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	return p
}
