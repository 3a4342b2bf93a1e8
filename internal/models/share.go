package models

import "time"

// ShareLink grants view or edit access to a plan through an opaque token.
type ShareLink struct {
	ID             string     `json:"id"`
	PlanID         string     `json:"plan_id"`
	OwnerID        string     `json:"owner_id"`
	Token          string     `json:"token"`
	Permission     string     `json:"permission"`
	Active         bool       `json:"active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	AccessCount    int        `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Usable reports whether the link grants access at now.
func (s *ShareLink) Usable(now time.Time) bool {
	return s.Active && (s.ExpiresAt == nil || s.ExpiresAt.After(now))
}

// Collaborator is the presence record of one viewer of a shared plan.
// UserID is empty for anonymous viewers.
type Collaborator struct {
	ID         string    `json:"id"`
	PlanID     string    `json:"plan_id"`
	UserID     string    `json:"user_id,omitempty"`
	SessionID  string    `json:"session_id"`
	Permission string    `json:"permission"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActiveAt reports whether the collaborator was seen within window before now.
func (c *Collaborator) ActiveAt(now time.Time, window time.Duration) bool {
	return !c.LastSeenAt.Before(now.Add(-window))
}
