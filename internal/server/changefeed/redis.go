package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "ideaforge:plan:"

// RedisBroker fans events out across server instances through Redis pub/sub.
type RedisBroker struct {
	rdb    *redis.Client
	logger logging.Logger
}

// NewRedisBroker connects to addr and verifies the connection with PING.
func NewRedisBroker(ctx context.Context, addr string, l logging.Logger) (*RedisBroker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBroker{rdb: rdb, logger: l.With("module", "changefeed_redis")}, nil
}

func channelName(planID string) string {
	return channelPrefix + planID
}

func (b *RedisBroker) Publish(ctx context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, channelName(ev.PlanID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe waits for Redis to confirm the subscription before returning,
// so events published afterwards are not missed.
func (b *RedisBroker) Subscribe(ctx context.Context, planID string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, channelName(planID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	s := &redisSubscription{ps: ps, ch: make(chan models.Event, subscriptionBuffer), done: make(chan struct{})}
	go func() {
		defer close(s.ch)
		for msg := range ps.Channel() {
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				b.logger.Warn(context.Background(), "skipping malformed event", "plan_id", planID, "error", err)
				continue
			}
			select {
			case s.ch <- ev:
			case <-s.done:
				return
			}
		}
	}()
	return s, nil
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}

func decodeEvent(payload string) (models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return models.Event{}, err
	}
	if ev.PlanID == "" || ev.Type == "" {
		return models.Event{}, fmt.Errorf("event without plan id or type")
	}
	return ev, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	ch   chan models.Event
	done chan struct{}
	once sync.Once
	err  error
}

func (s *redisSubscription) Events() <-chan models.Event { return s.ch }

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.ps.Close()
	})
	return s.err
}
