// Package services contains application services for the IdeaForge CLI.
// This file holds the authentication service: it keeps the bearer token
// issued by the identity provider in the local store and hands it to the
// API client.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/ideaforge/internal/client/client"
	"github.com/dmitrijs2005/ideaforge/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ideaforge/internal/common"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: verify the token against the server and persist it.
//   - Restore: load a previously saved token into the client.
//   - Logout: forget the token locally.
//   - LoggedIn: whether a token is active.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, token string) error
	Restore(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	LoggedIn() bool
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB

	mu       sync.RWMutex
	loggedIn bool
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) setLoggedIn(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loggedIn = v
}

func (a *authService) LoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loggedIn
}

// Login verifies the token against the server. A rejected token returns
// common.ErrorUnauthorized and leaves the client anonymous.
func (a *authService) Login(ctx context.Context, token string) error {
	a.client.SetAccessToken(token)

	if _, err := a.client.ListPlans(ctx); err != nil {
		a.client.SetAccessToken("")
		a.setLoggedIn(false)
		if client.IsAuthError(err) {
			return common.ErrorUnauthorized
		}
		return fmt.Errorf("verify token: %w", err)
	}

	if err := a.getMetadataRepo().Set(ctx, metadata.KeyAccessToken, token); err != nil {
		return err
	}

	a.setLoggedIn(true)
	return nil
}

func (a *authService) Restore(ctx context.Context) (bool, error) {
	token, ok, err := a.getMetadataRepo().Get(ctx, metadata.KeyAccessToken)
	if err != nil || !ok {
		return false, err
	}
	a.client.SetAccessToken(token)
	a.setLoggedIn(true)
	return true, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	a.setLoggedIn(false)
	return a.getMetadataRepo().Delete(ctx, metadata.KeyAccessToken)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
