package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/client/client"
	"github.com/dmitrijs2005/ideaforge/internal/client/config"
	"github.com/dmitrijs2005/ideaforge/internal/client/services"
	"github.com/dmitrijs2005/ideaforge/internal/client/syncer"
	"github.com/dmitrijs2005/ideaforge/internal/filex"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/timex"

	_ "modernc.org/sqlite"
)

// openTimeout bounds the initial handshake of a live session.
const openTimeout = 10 * time.Second

// syncWriter serializes writes coming from the REPL and from session
// callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type App struct {
	config *config.Config
	api    client.Client
	auth   services.AuthService
	viewer services.ViewerService
	db     *sql.DB
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	mu      sync.Mutex
	session *syncer.Session
	chat    []models.ChatMessage
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewIdeaForgeClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: c,
		api:    apiClient,
		auth:   services.NewAuthService(apiClient, db),
		viewer: services.NewViewerService(db, timex.SystemClock{}),
		db:     db,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    &syncWriter{w: os.Stdout},
	}, nil
}

// Run restores a saved login and serves the REPL until the user leaves.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	fmt.Fprintln(a.out, "Welcome to IdeaForge CLI (type 'help' for commands)")

	ok, err := a.auth.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "restore login failed", "error", err)
	} else if ok {
		fmt.Fprintln(a.out, "Restored saved login")
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) close(ctx context.Context) {
	a.stopSession(ctx)
	if err := a.auth.Close(ctx); err != nil {
		a.logger.Warn(ctx, "client close failed", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "db close failed", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.LoggedIn()
}

func (a *App) requireLogin() error {
	if !a.auth.LoggedIn() {
		return client.ErrNotLoggedIn
	}
	return nil
}

func (a *App) status() string {
	s := "anonymous"
	if a.auth.LoggedIn() {
		s = "logged in"
	}
	if sess := a.currentSession(); sess != nil && sess.Connected() {
		s += fmt.Sprintf(", live: %s [%s]", sess.View().Title, sess.Permission())
	}
	return "(" + s + ")"
}

func (a *App) currentSession() *syncer.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// swapSession installs s and returns the session it replaced.
func (a *App) swapSession(s *syncer.Session) *syncer.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.session
	a.session = s
	return prev
}

func (a *App) stopSession(ctx context.Context) bool {
	prev := a.swapSession(nil)
	if prev == nil {
		return false
	}
	if err := prev.Stop(); err != nil {
		a.logger.Warn(ctx, "session stop failed", "error", err)
	}
	return true
}
