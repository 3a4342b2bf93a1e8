package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ideaforge/internal/common"
)

// Login reads an access token without echo and verifies it with the server.
func (a *App) Login(ctx context.Context) error {
	token, err := GetSecret(a.out, "-Enter access token")
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("empty token: %w", common.ErrorValidation)
	}

	if err := a.auth.Login(ctx, token); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	a.mu.Lock()
	a.chat = nil
	a.mu.Unlock()

	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
