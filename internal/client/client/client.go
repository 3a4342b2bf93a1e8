package client

import (
	"context"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// EventStream yields change events until the context is cancelled or the
// server closes the stream.
type EventStream interface {
	Recv() (*models.Event, error)
}

type Client interface {
	Close() error
	SetAccessToken(token string)

	CreatePlan(ctx context.Context, title, idea string) (*models.Plan, error)
	GetPlan(ctx context.Context, planID string) (*models.Plan, string, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	SavePlan(ctx context.Context, planID string, baseVersion int, title string, content models.Content) (*models.Plan, *models.Version, error)
	UpdatePlan(ctx context.Context, planID string, patch models.PlanPatch) (*models.Plan, *models.Version, error)
	DeletePlan(ctx context.Context, planID string) error

	ListVersions(ctx context.Context, planID string) ([]*models.Version, error)
	GetVersion(ctx context.Context, planID string, versionNumber int) (*models.Version, error)
	DeleteVersion(ctx context.Context, versionID string) error
	CompareVersions(ctx context.Context, planID string, older, newer int) ([]models.Diff, string, error)

	CreateShareLink(ctx context.Context, planID, permission string, expiresInDays int) (*models.ShareLink, string, error)
	ListShareLinks(ctx context.Context, planID string) ([]*models.ShareLink, error)
	GetShareByToken(ctx context.Context, token string) (*models.ShareLink, error)
	RevokeShareLink(ctx context.Context, shareID string) error
	UpdateSharePermission(ctx context.Context, shareID, permission string) error
	DeleteShareLink(ctx context.Context, shareID string) error

	JoinPlan(ctx context.Context, planID, sessionID string) (*models.Collaborator, error)
	ListCollaborators(ctx context.Context, planID string) ([]*models.Collaborator, error)
	Heartbeat(ctx context.Context, planID, collaboratorID string) error
	Watch(ctx context.Context, planID string) (EventStream, error)

	Chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatReply, error)
	ExportPlan(ctx context.Context, planID string) (string, error)
}
