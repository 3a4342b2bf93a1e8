package models

type EventType string

const (
	EventPlanUpdated          EventType = "plan_updated"
	EventCollaboratorsChanged EventType = "collaborators_changed"
)

// Event is a change notification for one plan. Plan is set for
// EventPlanUpdated only; collaborator events are bare triggers.
type Event struct {
	Type   EventType `json:"type"`
	PlanID string    `json:"plan_id"`
	Plan   *Plan     `json:"plan,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatReply struct {
	Message string     `json:"message"`
	Usage   *ChatUsage `json:"usage,omitempty"`
}
