package api

import "github.com/dmitrijs2005/ideaforge/internal/models"

type Empty struct{}

// CreatePlanRequest creates a plan. A nil Content asks the server to
// generate one from Idea.
type CreatePlanRequest struct {
	Title   string          `json:"title"`
	Idea    string          `json:"idea"`
	Content *models.Content `json:"content,omitempty"`
}

type PlanRequest struct {
	PlanID string `json:"plan_id"`
}

type PlanResponse struct {
	Plan       *models.Plan `json:"plan"`
	Permission string       `json:"permission"`
}

type ListPlansResponse struct {
	Plans []*models.Plan `json:"plans"`
}

// SavePlanRequest replaces title and content. BaseVersion is the
// total_versions the caller last saw; zero skips the check.
type SavePlanRequest struct {
	PlanID      string         `json:"plan_id"`
	BaseVersion int            `json:"base_version"`
	Title       string         `json:"title"`
	Content     models.Content `json:"content"`
}

type UpdatePlanRequest struct {
	PlanID string           `json:"plan_id"`
	Patch  models.PlanPatch `json:"patch"`
}

// SavePlanResponse carries the saved plan and the version it produced.
// Version is nil when an update changed nothing.
type SavePlanResponse struct {
	Plan    *models.Plan    `json:"plan"`
	Version *models.Version `json:"version,omitempty"`
}

type ListVersionsResponse struct {
	Versions []*models.Version `json:"versions"`
}

type GetVersionRequest struct {
	PlanID        string `json:"plan_id"`
	VersionNumber int    `json:"version_number"`
}

type VersionResponse struct {
	Version *models.Version `json:"version"`
}

type DeleteVersionRequest struct {
	VersionID string `json:"version_id"`
}

type CompareVersionsRequest struct {
	PlanID string `json:"plan_id"`
	Older  int    `json:"older"`
	Newer  int    `json:"newer"`
}

type CompareVersionsResponse struct {
	Diffs   []models.Diff `json:"diffs"`
	Summary string        `json:"summary"`
}

type CreateShareLinkRequest struct {
	PlanID        string `json:"plan_id"`
	Permission    string `json:"permission"`
	ExpiresInDays int    `json:"expires_in_days"`
}

type ShareLinkResponse struct {
	Share *models.ShareLink `json:"share"`
	URL   string            `json:"url"`
}

type ListShareLinksResponse struct {
	Shares []*ShareLinkResponse `json:"shares"`
}

type GetShareByTokenRequest struct {
	Token string `json:"token"`
}

type ShareRequest struct {
	ShareID string `json:"share_id"`
}

type UpdateSharePermissionRequest struct {
	ShareID    string `json:"share_id"`
	Permission string `json:"permission"`
}

type JoinPlanRequest struct {
	PlanID    string `json:"plan_id"`
	SessionID string `json:"session_id"`
}

type CollaboratorResponse struct {
	Collaborator *models.Collaborator `json:"collaborator"`
}

type ListCollaboratorsResponse struct {
	Collaborators []*models.Collaborator `json:"collaborators"`
}

type HeartbeatRequest struct {
	PlanID         string `json:"plan_id"`
	CollaboratorID string `json:"collaborator_id"`
}

type ChatRequest struct {
	Messages []models.ChatMessage `json:"messages"`
}

type ExportPlanResponse struct {
	URL string `json:"url"`
}
