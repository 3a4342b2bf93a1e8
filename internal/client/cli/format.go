package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/client/repositories/recent"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func printPlan(w io.Writer, p *models.Plan) {
	fmt.Fprintf(w, "%s  [%s]\n", p.Title, p.ID)
	fmt.Fprintf(w, "version %d of %d, updated %s\n", p.CurrentVersion, p.TotalVersions, p.UpdatedAt.Local().Format(timeLayout))
	if p.Idea != "" {
		fmt.Fprintf(w, "\nIdea:\n  %s\n", p.Idea)
	}
	if p.Content.Description != "" {
		fmt.Fprintf(w, "\nDescription:\n  %s\n", p.Content.Description)
	}

	if len(p.Content.TechStack) > 0 {
		fmt.Fprintln(w, "\nTech stack:")
		for _, t := range p.Content.TechStack {
			fmt.Fprintf(w, "  - %s (%s): %s\n", t.Name, t.Category, t.Description)
		}
	}

	if len(p.Content.Roadmap) > 0 {
		fmt.Fprintln(w, "\nRoadmap:")
		for _, r := range p.Content.Roadmap {
			fmt.Fprintf(w, "  %s, %s\n", r.Phase, r.Duration)
			for _, task := range r.Tasks {
				fmt.Fprintf(w, "    * %s\n", task)
			}
			if r.Milestone != "" {
				fmt.Fprintf(w, "    milestone: %s\n", r.Milestone)
			}
		}
	}

	printList(w, "Structure", p.Content.Structure)
	printList(w, "Deployment", p.Content.Deployment)

	if len(p.Content.PitchDeck) > 0 {
		fmt.Fprintln(w, "\nPitch deck:")
		for i, s := range p.Content.PitchDeck {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s.Title)
			for _, line := range s.Content {
				fmt.Fprintf(w, "     %s\n", line)
			}
		}
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

func printPlans(w io.Writer, plans []*models.Plan) {
	if len(plans) == 0 {
		fmt.Fprintln(w, "No plans yet, use 'new' to create one")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tVERSION\tUPDATED")
	for _, p := range plans {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", p.ID, p.Title, p.CurrentVersion, p.TotalVersions, p.UpdatedAt.Local().Format(timeLayout))
	}
	_ = tw.Flush()
}

func printVersions(w io.Writer, versions []*models.Version) {
	if len(versions) == 0 {
		fmt.Fprintln(w, "No versions")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tCREATED\tCHANGES")
	for _, v := range versions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", v.VersionNumber, v.ID, v.CreatedAt.Local().Format(timeLayout), v.ChangesSummary)
	}
	_ = tw.Flush()
}

func printDiffs(w io.Writer, diffs []models.Diff, summary string) {
	if len(diffs) == 0 {
		fmt.Fprintln(w, "No differences")
		return
	}
	for _, d := range diffs {
		switch d.Type {
		case models.DiffAdded:
			fmt.Fprintf(w, "+ %s: %s\n", d.Field, d.NewValue)
		case models.DiffRemoved:
			fmt.Fprintf(w, "- %s: %s\n", d.Field, d.OldValue)
		default:
			fmt.Fprintf(w, "~ %s: %s -> %s\n", d.Field, d.OldValue, d.NewValue)
		}
	}
	fmt.Fprintf(w, "Summary: %s\n", summary)
}

func printLinks(w io.Writer, links []*models.ShareLink, now time.Time) {
	if len(links) == 0 {
		fmt.Fprintln(w, "No share links")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOKEN\tPERMISSION\tSTATE\tEXPIRES\tOPENED")
	for _, l := range links {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", l.ID, l.Token, l.Permission, linkState(l, now), expiry(l.ExpiresAt), l.AccessCount)
	}
	_ = tw.Flush()
}

func linkState(l *models.ShareLink, now time.Time) string {
	switch {
	case !l.Active:
		return "revoked"
	case !l.Usable(now):
		return "expired"
	default:
		return "active"
	}
}

func expiry(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(timeLayout)
}

func printCollaborators(w io.Writer, collaborators []*models.Collaborator, sessionID string) {
	if len(collaborators) == 0 {
		fmt.Fprintln(w, "Nobody else is here")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIEWER\tPERMISSION\tLAST SEEN")
	for _, c := range collaborators {
		name := c.UserID
		if name == "" {
			name = "anonymous " + shortID(c.SessionID)
		}
		if c.SessionID == sessionID {
			name += " (you)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, c.Permission, c.LastSeenAt.Local().Format("15:04:05"))
	}
	_ = tw.Flush()
}

func printRecent(w io.Writer, shares []recent.Share, baseURL string) {
	if len(shares) == 0 {
		fmt.Fprintln(w, "No shared plans opened yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tPERMISSION\tOPENED\tURL")
	for _, s := range shares {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Title, s.Permission, s.OpenedAt.Local().Format(timeLayout), sharedURL(baseURL, s.Token))
	}
	_ = tw.Flush()
}

func sharedURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/shared/" + token
}

func shortID(id string) string {
	id = strings.TrimPrefix(id, "session_")
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
