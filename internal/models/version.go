package models

import "time"

// Version is an immutable snapshot of a plan's content.
type Version struct {
	ID             string    `json:"id"`
	PlanID         string    `json:"plan_id"`
	OwnerID        string    `json:"owner_id"`
	VersionNumber  int       `json:"version_number"`
	Title          string    `json:"title"`
	Content        Content   `json:"content"`
	ChangesSummary string    `json:"changes_summary,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type DiffType string

const (
	DiffAdded    DiffType = "added"
	DiffRemoved  DiffType = "removed"
	DiffModified DiffType = "modified"
)

// Diff is one semantic difference between two snapshots.
type Diff struct {
	Field    string   `json:"field"`
	OldValue string   `json:"old_value"`
	NewValue string   `json:"new_value"`
	Type     DiffType `json:"type"`
}
