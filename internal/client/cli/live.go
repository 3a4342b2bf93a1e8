package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ideaforge/internal/client/syncer"
)

var errNoSession = errors.New("no shared plan is open, use 'open <token|url>'")

// parseShareToken accepts a bare token or a share URL such as
// http://host/shared/<token>.
func parseShareToken(s string) string {
	const marker = "/shared/"
	if i := strings.LastIndex(s, marker); i >= 0 {
		s = s[i+len(marker):]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Open joins a shared plan live. A previously opened plan is left first.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("open <token|url>")
	}
	token := parseShareToken(args[0])
	if token == "" {
		return usageError("open <token|url>")
	}

	sessionID, err := a.viewer.SessionID(ctx)
	if err != nil {
		return err
	}

	a.stopSession(ctx)

	s := syncer.New(a.api, token, sessionID, a.config.HeartbeatInterval, a.logger)
	s.OnChange(func(kind syncer.ChangeKind) { a.onSessionChange(s, kind) })

	startCtx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()
	if err := s.Start(startCtx); err != nil {
		return err
	}
	a.swapSession(s)

	plan := s.Plan()
	if err := a.viewer.Remember(ctx, s.Link(), plan); err != nil {
		a.logger.Warn(ctx, "remember share failed", "error", err)
	}

	printPlan(a.out, plan)
	fmt.Fprintf(a.out, "\nJoined with %s access, %d viewer(s) active\n", s.Permission(), len(s.Collaborators()))
	return nil
}

// onSessionChange reports updates pushed while the user is at the prompt.
// Events of a session that was already replaced are dropped.
func (a *App) onSessionChange(s *syncer.Session, kind syncer.ChangeKind) {
	if a.currentSession() != s {
		return
	}
	switch kind {
	case syncer.ChangePlan:
		if p := s.Plan(); p != nil {
			fmt.Fprintf(a.out, "\n* %q updated to version %d\n", p.Title, p.TotalVersions)
		}
	case syncer.ChangeCollaborators:
		fmt.Fprintf(a.out, "\n* %d viewer(s) active\n", len(s.Collaborators()))
	case syncer.ChangeConnection:
		if !s.Connected() {
			fmt.Fprintln(a.out, "\n* disconnected from the shared plan")
		}
	}
}

func (a *App) Who(ctx context.Context) error {
	s := a.currentSession()
	if s == nil {
		return errNoSession
	}
	sessionID, err := a.viewer.SessionID(ctx)
	if err != nil {
		return err
	}
	printCollaborators(a.out, s.Collaborators(), sessionID)
	return nil
}

func (a *App) CloseShared(ctx context.Context) error {
	if !a.stopSession(ctx) {
		return errNoSession
	}
	fmt.Fprintln(a.out, "Left the shared plan")
	return nil
}

func (a *App) Recent(ctx context.Context) error {
	shares, err := a.viewer.Recent(ctx, 10)
	if err != nil {
		return err
	}
	printRecent(a.out, shares, a.config.PublicBaseURL)
	return nil
}
