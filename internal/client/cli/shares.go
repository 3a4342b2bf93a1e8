package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
)

func (a *App) Share(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usageError("share <plan-id> <view|edit> [days]")
	}
	days := 0
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 0 {
			return fmt.Errorf("bad number of days %q: %w", args[2], common.ErrorValidation)
		}
		days = n
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	link, url, err := a.api.CreateShareLink(ctx, args[0], args[1], days)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Share link %s (%s, expires %s):\n%s\n", link.ID, link.Permission, expiry(link.ExpiresAt), url)
	return nil
}

func (a *App) Links(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("links <plan-id>")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	links, err := a.api.ListShareLinks(ctx, args[0])
	if err != nil {
		return err
	}
	printLinks(a.out, links, time.Now())
	return nil
}

func (a *App) Revoke(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("revoke <share-id>")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.api.RevokeShareLink(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Share link revoked")
	return nil
}

func (a *App) SetPermission(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("perm <share-id> <view|edit>")
	}
	if !common.ValidPermission(args[1]) {
		return fmt.Errorf("permission must be view or edit: %w", common.ErrorValidation)
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.api.UpdateSharePermission(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Share link now grants %s access\n", args[1])
	return nil
}

func (a *App) Unshare(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("unshare <share-id>")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.api.DeleteShareLink(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Share link deleted")
	return nil
}
