package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// Field labels used in diffs and change summaries.
const (
	FieldDescription  = "Description"
	FieldTechStack    = "Tech Stack"
	FieldRoadmapPhase = "Roadmap Phase"
)

const noChangesSummary = "No changes detected"

// CompareVersions lists the semantic differences between two snapshots.
//
// Order: description, tech stack additions, tech stack removals, roadmap
// additions, roadmap removals. Tech stack entries are compared by name and
// roadmap phases by label, so edits to other attributes of an entry are not
// reported. Structure and deployment lists are not compared.
func CompareVersions(older, newer models.Content) []models.Diff {
	var diffs []models.Diff

	if older.Description != newer.Description {
		diffs = append(diffs, models.Diff{
			Field:    FieldDescription,
			OldValue: older.Description,
			NewValue: newer.Description,
			Type:     models.DiffModified,
		})
	}

	oldTech := make([]string, 0, len(older.TechStack))
	for _, t := range older.TechStack {
		oldTech = append(oldTech, t.Name)
	}
	newTech := make([]string, 0, len(newer.TechStack))
	for _, t := range newer.TechStack {
		newTech = append(newTech, t.Name)
	}
	diffs = appendSetDiffs(diffs, FieldTechStack, oldTech, newTech)

	oldPhases := make([]string, 0, len(older.Roadmap))
	for _, p := range older.Roadmap {
		oldPhases = append(oldPhases, p.Phase)
	}
	newPhases := make([]string, 0, len(newer.Roadmap))
	for _, p := range newer.Roadmap {
		newPhases = append(newPhases, p.Phase)
	}
	diffs = appendSetDiffs(diffs, FieldRoadmapPhase, oldPhases, newPhases)

	return diffs
}

func appendSetDiffs(diffs []models.Diff, field string, older, newer []string) []models.Diff {
	oldSet := make(map[string]struct{}, len(older))
	for _, v := range older {
		oldSet[v] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newer))
	for _, v := range newer {
		newSet[v] = struct{}{}
	}

	for _, v := range newer {
		if _, ok := oldSet[v]; !ok {
			diffs = append(diffs, models.Diff{Field: field, NewValue: v, Type: models.DiffAdded})
		}
	}
	for _, v := range older {
		if _, ok := newSet[v]; !ok {
			diffs = append(diffs, models.Diff{Field: field, OldValue: v, Type: models.DiffRemoved})
		}
	}
	return diffs
}

// GenerateChangesSummary renders diffs as "Added: ...; Removed: ...; Modified: ...".
func GenerateChangesSummary(diffs []models.Diff) string {
	if len(diffs) == 0 {
		return noChangesSummary
	}

	var added, removed, modified []string
	for _, d := range diffs {
		switch d.Type {
		case models.DiffAdded:
			added = append(added, fmt.Sprintf("%s (%s)", d.Field, d.NewValue))
		case models.DiffRemoved:
			removed = append(removed, fmt.Sprintf("%s (%s)", d.Field, d.OldValue))
		case models.DiffModified:
			modified = append(modified, d.Field)
		}
	}

	var parts []string
	if len(added) > 0 {
		parts = append(parts, "Added: "+strings.Join(added, ", "))
	}
	if len(removed) > 0 {
		parts = append(parts, "Removed: "+strings.Join(removed, ", "))
	}
	if len(modified) > 0 {
		parts = append(parts, "Modified: "+strings.Join(modified, ", "))
	}
	return strings.Join(parts, "; ")
}
