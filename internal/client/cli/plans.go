package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

func (a *App) ListPlans(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	plans, err := a.api.ListPlans(ctx)
	if err != nil {
		return err
	}
	printPlans(a.out, plans)
	return nil
}

// NewPlan asks for a title and the idea text. The server synthesizes the
// plan content and stores it as version 1.
func (a *App) NewPlan(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	title, err := GetSimpleText(a.reader, "-Enter title", a.out)
	if err != nil {
		return err
	}
	idea, err := GetMultiline(a.reader, "-Describe the idea", a.out)
	if err != nil {
		return err
	}
	if title == "" || idea == "" {
		return fmt.Errorf("title and idea are required: %w", common.ErrorValidation)
	}

	plan, err := a.api.CreatePlan(ctx, title, idea)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created plan %s (version %d)\n", plan.ID, plan.CurrentVersion)
	return nil
}

func (a *App) ShowPlan(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("show <plan-id>")
	}
	plan, permission, err := a.api.GetPlan(ctx, args[0])
	if err != nil {
		return err
	}
	printPlan(a.out, plan)
	if permission != common.PermissionEdit {
		fmt.Fprintf(a.out, "\n(%s only)\n", permission)
	}
	return nil
}

// EditPlan changes one field of a plan. Without a plan id it edits the
// shared plan opened with 'open'.
func (a *App) EditPlan(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usageError("edit [plan-id]")
	}

	var planID string
	if len(args) == 1 {
		if err := a.requireLogin(); err != nil {
			return err
		}
		planID = args[0]
	} else if a.currentSession() == nil {
		return usageError("edit <plan-id>, or open a shared plan first")
	}

	patch, err := a.readPatch()
	if err != nil {
		return err
	}

	if planID == "" {
		plan, err := a.currentSession().UpdateIdea(ctx, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved version %d\n", plan.TotalVersions)
		return nil
	}

	_, version, err := a.api.UpdatePlan(ctx, planID, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved version %d: %s\n", version.VersionNumber, version.ChangesSummary)
	return nil
}

func (a *App) readPatch() (models.PlanPatch, error) {
	var patch models.PlanPatch

	field, err := GetSimpleText(a.reader, "-Field to change (title, description, tech, roadmap, structure, deployment)", a.out)
	if err != nil {
		return patch, err
	}

	field = strings.ToLower(field)
	switch field {
	case "title":
		v, err := GetSimpleText(a.reader, "-New title", a.out)
		if err != nil {
			return patch, err
		}
		if v == "" {
			return patch, fmt.Errorf("title must not be empty: %w", common.ErrorValidation)
		}
		patch.Title = &v
	case "description":
		v, err := GetMultiline(a.reader, "-New description", a.out)
		if err != nil {
			return patch, err
		}
		patch.Description = &v
	case "tech":
		v, err := GetMultiline(a.reader, "-New tech stack, one per line: name | category | description", a.out)
		if err != nil {
			return patch, err
		}
		items, err := parseTechStack(v)
		if err != nil {
			return patch, err
		}
		patch.TechStack = &items
	case "roadmap":
		v, err := GetMultiline(a.reader, "-New roadmap, one phase per line: phase | duration | task; task", a.out)
		if err != nil {
			return patch, err
		}
		phases, err := parseRoadmap(v)
		if err != nil {
			return patch, err
		}
		patch.Roadmap = &phases
	case "structure", "deployment":
		v, err := GetSimpleText(a.reader, "-New items, comma separated", a.out)
		if err != nil {
			return patch, err
		}
		items := splitItems(v)
		if field == "structure" {
			patch.Structure = &items
		} else {
			patch.Deployment = &items
		}
	default:
		return patch, fmt.Errorf("unknown field %q: %w", field, common.ErrorValidation)
	}
	return patch, nil
}

// parseTechStack reads "name | category | description" lines. Only the name
// is required.
func parseTechStack(text string) ([]models.TechStackItem, error) {
	items := []models.TechStackItem{}
	for _, line := range nonEmptyLines(text) {
		parts := splitColumns(line, 3)
		if parts[0] == "" {
			return nil, fmt.Errorf("tech stack line %q has no name: %w", line, common.ErrorValidation)
		}
		items = append(items, models.TechStackItem{Name: parts[0], Category: parts[1], Description: parts[2]})
	}
	return items, nil
}

// parseRoadmap reads "phase | duration | task; task" lines.
func parseRoadmap(text string) ([]models.RoadmapPhase, error) {
	phases := []models.RoadmapPhase{}
	for _, line := range nonEmptyLines(text) {
		parts := splitColumns(line, 3)
		if parts[0] == "" {
			return nil, fmt.Errorf("roadmap line %q has no phase: %w", line, common.ErrorValidation)
		}
		tasks := []string{}
		for _, t := range strings.Split(parts[2], ";") {
			if t = strings.TrimSpace(t); t != "" {
				tasks = append(tasks, t)
			}
		}
		phases = append(phases, models.RoadmapPhase{Phase: parts[0], Duration: parts[1], Tasks: tasks})
	}
	return phases, nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// splitColumns splits a line on "|" into exactly n trimmed columns; missing
// columns are empty and extra ones are folded into the last.
func splitColumns(line string, n int) []string {
	cols := strings.SplitN(line, "|", n)
	out := make([]string, n)
	for i, c := range cols {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func splitItems(s string) []string {
	items := []string{}
	for _, it := range strings.Split(s, ",") {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	return items
}

func (a *App) DeletePlan(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <plan-id>")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	answer, err := GetSimpleText(a.reader, "-Delete the plan with all versions and share links? (y/N)", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.api.DeletePlan(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Plan deleted")
	return nil
}

func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("export <plan-id>")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	url, err := a.api.ExportPlan(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Download (valid for 15 minutes):\n%s\n", url)
	return nil
}
