// Package changefeed relays plan change events to subscribers. It is the
// subscribe-to-change primitive behind live viewing sessions: services publish
// after successful writes and every open Watch stream or live socket holds a
// Subscription for one plan.
package changefeed

import (
	"context"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// Broker fans events out to subscribers of the same plan.
type Broker interface {
	Publish(ctx context.Context, ev models.Event) error
	Subscribe(ctx context.Context, planID string) (Subscription, error)
	Close() error
}

// Subscription delivers events for one plan until Close is called.
// Close is safe to call more than once.
type Subscription interface {
	Events() <-chan models.Event
	Close() error
}

const subscriptionBuffer = 32
