package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/ideaforge/internal/common"
)

func parseVersion(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad version number %q: %w", s, common.ErrorValidation)
	}
	return n, nil
}

func (a *App) History(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("history <plan-id>")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	versions, err := a.api.ListVersions(ctx, args[0])
	if err != nil {
		return err
	}
	printVersions(a.out, versions)
	return nil
}

func (a *App) Diff(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageError("diff <plan-id> <older> <newer>")
	}
	older, err := parseVersion(args[1])
	if err != nil {
		return err
	}
	newer, err := parseVersion(args[2])
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	diffs, summary, err := a.api.CompareVersions(ctx, args[0], older, newer)
	if err != nil {
		return err
	}
	printDiffs(a.out, diffs, summary)
	return nil
}

// Restore saves the snapshot of an old version as the newest one. History is
// never rewritten.
func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("restore <plan-id> <version>")
	}
	n, err := parseVersion(args[1])
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	plan, _, err := a.api.GetPlan(ctx, args[0])
	if err != nil {
		return err
	}
	old, err := a.api.GetVersion(ctx, args[0], n)
	if err != nil {
		return err
	}

	_, version, err := a.api.SavePlan(ctx, plan.ID, plan.TotalVersions, old.Title, old.Content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored version %d as version %d: %s\n", n, version.VersionNumber, version.ChangesSummary)
	return nil
}

func (a *App) RemoveVersion(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("rmversion <version-id>")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.api.DeleteVersion(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Version deleted")
	return nil
}
