package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ideaforge/internal/client/client"
	"github.com/dmitrijs2005/ideaforge/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	ListPlans(ctx context.Context) error
	NewPlan(ctx context.Context) error
	ShowPlan(ctx context.Context, args []string) error
	EditPlan(ctx context.Context, args []string) error
	DeletePlan(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error

	History(ctx context.Context, args []string) error
	Diff(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
	RemoveVersion(ctx context.Context, args []string) error

	Share(ctx context.Context, args []string) error
	Links(ctx context.Context, args []string) error
	Revoke(ctx context.Context, args []string) error
	SetPermission(ctx context.Context, args []string) error
	Unshare(ctx context.Context, args []string) error

	Open(ctx context.Context, args []string) error
	Who(ctx context.Context) error
	CloseShared(ctx context.Context) error
	Recent(ctx context.Context) error

	Chat(ctx context.Context) error
}

// usageError is returned by handlers called with the wrong arguments.
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

const helpAnonymous = `Available commands:
  login                            authenticate with an access token
  open <token|url>                 open a shared plan live
  who | close                      active viewers / leave the shared plan
  edit                             edit the open shared plan (edit links)
  recent                           recently opened share links
  exit                             leave the program`

const helpLoggedIn = `Available commands:
  plans | new | show <plan> | edit [plan] | delete <plan>
  history <plan> | diff <plan> <old> <new> | restore <plan> <n> | rmversion <version-id>
  share <plan> <view|edit> [days] | links <plan>
  revoke <share> | perm <share> <view|edit> | unshare <share>
  open <token|url> | who | close | recent
  export <plan> | chat | logout | exit`

// runREPL starts a simple read–eval–print loop for the IdeaForge CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a' with the remaining tokens as
// arguments. Errors returned by handlers are printed in user terms and the
// loop carries on. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("if %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)

		case "plans", "l":
			err = a.ListPlans(ctx)
		case "new":
			err = a.NewPlan(ctx)
		case "show":
			err = a.ShowPlan(ctx, args)
		case "edit":
			err = a.EditPlan(ctx, args)
		case "delete":
			err = a.DeletePlan(ctx, args)
		case "export":
			err = a.Export(ctx, args)

		case "history":
			err = a.History(ctx, args)
		case "diff":
			err = a.Diff(ctx, args)
		case "restore":
			err = a.Restore(ctx, args)
		case "rmversion":
			err = a.RemoveVersion(ctx, args)

		case "share":
			err = a.Share(ctx, args)
		case "links":
			err = a.Links(ctx, args)
		case "revoke":
			err = a.Revoke(ctx, args)
		case "perm":
			err = a.SetPermission(ctx, args)
		case "unshare":
			err = a.Unshare(ctx, args)

		case "open":
			err = a.Open(ctx, args)
		case "who":
			err = a.Who(ctx)
		case "close":
			err = a.CloseShared(ctx)
		case "recent":
			err = a.Recent(ctx)

		case "chat":
			err = a.Chat(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", describeError(err))
		}
	}
}

// describeError turns service errors into messages for the terminal.
func describeError(err error) string {
	var ue usageError
	var upstream *common.UpstreamError

	switch {
	case errors.As(err, &ue):
		return ue.Error()
	case errors.Is(err, client.ErrNotLoggedIn):
		return "not logged in, use 'login' first"
	case errors.Is(err, common.ErrTokenExpired):
		return "access token expired, use 'login' again"
	case errors.Is(err, common.ErrorUnauthorized):
		return "access token rejected, use 'login' again"
	case errors.Is(err, common.ErrorNotFound):
		return "not found or access denied"
	case errors.Is(err, common.ErrVersionConflict):
		return "the plan was changed by someone else, reload it and try again"
	case errors.Is(err, common.ErrorForbidden):
		return "permission denied"
	case errors.Is(err, common.ErrorValidation):
		return "invalid input: " + err.Error()
	case errors.As(err, &upstream):
		return "assistant unavailable: " + upstream.Message
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	default:
		return err.Error()
	}
}
