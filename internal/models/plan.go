// Package models holds the domain types shared by the server and the client:
// plans and their content, version snapshots, share links, collaborators and
// change events.
package models

import "time"

type TechStackItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type RoadmapPhase struct {
	Phase     string   `json:"phase"`
	Duration  string   `json:"duration"`
	Tasks     []string `json:"tasks"`
	Milestone string   `json:"milestone,omitempty"`
}

type PitchSlide struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// Content is the versioned part of a plan. Every Version stores a full copy.
type Content struct {
	Description string          `json:"description"`
	TechStack   []TechStackItem `json:"tech_stack"`
	Roadmap     []RoadmapPhase  `json:"roadmap"`
	Structure   []string        `json:"structure"`
	Deployment  []string        `json:"deployment"`
	PitchDeck   []PitchSlide    `json:"pitch_deck"`
}

// Plan is the mutable root entity owned by a user.
type Plan struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title"`
	Idea           string    `json:"idea"`
	Content        Content   `json:"content"`
	CurrentVersion int       `json:"current_version"`
	TotalVersions  int       `json:"total_versions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PlanPatch lists the fields a partial update may touch. Nil means unchanged.
type PlanPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	TechStack   *[]TechStackItem `json:"tech_stack,omitempty"`
	Roadmap     *[]RoadmapPhase  `json:"roadmap,omitempty"`
	Structure   *[]string        `json:"structure,omitempty"`
	Deployment  *[]string        `json:"deployment,omitempty"`
	PitchDeck   *[]PitchSlide    `json:"pitch_deck,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p PlanPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.TechStack == nil && p.Roadmap == nil &&
		p.Structure == nil && p.Deployment == nil && p.PitchDeck == nil
}

// Apply returns the title and content that result from applying p on top of plan.
func (p PlanPatch) Apply(plan *Plan) (string, Content) {
	title, c := plan.Title, plan.Content
	if p.Title != nil {
		title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.TechStack != nil {
		c.TechStack = *p.TechStack
	}
	if p.Roadmap != nil {
		c.Roadmap = *p.Roadmap
	}
	if p.Structure != nil {
		c.Structure = *p.Structure
	}
	if p.Deployment != nil {
		c.Deployment = *p.Deployment
	}
	if p.PitchDeck != nil {
		c.PitchDeck = *p.PitchDeck
	}
	return title, c
}
