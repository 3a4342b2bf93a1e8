package changefeed

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// MemoryBroker is an in-process Broker used for single-node deployments and tests.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySubscription]struct{}
	logger logging.Logger
}

func NewMemoryBroker(l logging.Logger) *MemoryBroker {
	return &MemoryBroker{
		subs:   make(map[string]map[*memorySubscription]struct{}),
		logger: l.With("module", "changefeed_memory"),
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
// Both event kinds are idempotent triggers on the receiving side.
func (b *MemoryBroker) Publish(ctx context.Context, ev models.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[ev.PlanID] {
		select {
		case s.ch <- ev:
		default:
			b.logger.Warn(ctx, "subscriber buffer full, event dropped", "plan_id", ev.PlanID, "type", ev.Type)
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, planID string) (Subscription, error) {
	s := &memorySubscription{
		broker: b,
		planID: planID,
		ch:     make(chan models.Event, subscriptionBuffer),
	}
	b.mu.Lock()
	if b.subs[planID] == nil {
		b.subs[planID] = make(map[*memorySubscription]struct{})
	}
	b.subs[planID][s] = struct{}{}
	b.mu.Unlock()
	return s, nil
}

func (b *MemoryBroker) remove(s *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[s.planID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, s.planID)
		}
	}
	close(s.ch)
}

// Close drops every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	var all []*memorySubscription
	for _, set := range b.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	b.mu.Unlock()
	for _, s := range all {
		_ = s.Close()
	}
	return nil
}

// SubscriberCount reports how many subscriptions are open for planID.
func (b *MemoryBroker) SubscriberCount(planID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[planID])
}

type memorySubscription struct {
	broker *MemoryBroker
	planID string
	ch     chan models.Event
	once   sync.Once
}

func (s *memorySubscription) Events() <-chan models.Event { return s.ch }

func (s *memorySubscription) Close() error {
	s.once.Do(func() { s.broker.remove(s) })
	return nil
}
