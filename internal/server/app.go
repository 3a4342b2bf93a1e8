// Package server wires the IdeaForge backend together: storage, the change
// feed, domain services and the gRPC and HTTP front ends. It handles
// graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/server/auth"
	"github.com/dmitrijs2005/ideaforge/internal/server/changefeed"
	"github.com/dmitrijs2005/ideaforge/internal/server/config"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ideaforge/internal/server/services"
	"github.com/dmitrijs2005/ideaforge/internal/server/web"
	"github.com/dmitrijs2005/ideaforge/internal/timex"

	gs "github.com/dmitrijs2005/ideaforge/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	broker changefeed.Broker
	grpc   *gs.GRPCServer
	web    *web.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger, &repomanager.PostgresRepositoryManager{})
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	broker, err := newBroker(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("change feed init error: %w", err)
	}

	clock := timex.SystemClock{}

	plans := services.NewPlanService(db, rm, broker, clock, logger)
	versions := services.NewVersionService(db, rm, clock, logger)
	shares := services.NewShareService(db, rm, clock, c.PublicBaseURL, logger)
	presence := services.NewPresenceService(db, rm, broker, clock, logger)
	chat := services.NewChatService(c.ChatAPIURL, c.ChatAPIKey, c.ChatModel, &http.Client{Timeout: 60 * time.Second}, logger)
	archive := services.NewArchiveService(db, rm, clock, services.S3Settings{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	}, logger)

	svc := gs.Services{
		Plans:    plans,
		Versions: versions,
		Shares:   shares,
		Presence: presence,
		Chat:     chat,
		Archive:  archive,
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		broker: broker,
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, auth.NewVerifier([]byte(c.SecretKey))),
		web:    web.NewServer(c.EndpointAddrHTTP, shares, presence, logger),
	}, nil
}

// newBroker picks Redis pub/sub when an address is configured so several
// server instances share one feed, and the in-process broker otherwise.
func newBroker(ctx context.Context, c *config.Config, l logging.Logger) (changefeed.Broker, error) {
	if c.RedisAddr == "" {
		return changefeed.NewMemoryBroker(l), nil
	}
	b, err := changefeed.NewRedisBroker(ctx, c.RedisAddr, l)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts both front ends and blocks until a signal arrives or one of
// them fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, "gRPC server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.web.Run(ctx); err != nil {
			app.logger.Error(ctx, "HTTP server failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if err := app.broker.Close(); err != nil {
		app.logger.Warn(ctx, "change feed close failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
