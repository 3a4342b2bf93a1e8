// Package recent remembers the share links this CLI opened, so a viewer can
// reopen a plan without pasting the token again.
package recent

import (
	"context"
	"time"
)

type Share struct {
	Token      string
	PlanID     string
	Title      string
	Permission string
	OpenedAt   time.Time
}

type Repository interface {
	// Touch inserts the share or refreshes its title, permission and OpenedAt.
	Touch(ctx context.Context, s Share) error
	// List returns the most recently opened shares first.
	List(ctx context.Context, limit int) ([]Share, error)
	Forget(ctx context.Context, token string) error
}
