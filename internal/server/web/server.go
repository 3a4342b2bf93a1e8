// Package web serves the public side of share links: a JSON view of a shared
// plan and a WebSocket live channel that carries presence and plan updates.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type ShareResolver interface {
	ResolveShare(ctx context.Context, token string) (*models.ShareLink, *models.Plan, error)
}

type Presence interface {
	JoinAsCollaborator(ctx context.Context, planID, permission, sessionID, userID string) (*models.Collaborator, error)
	GetActiveCollaborators(ctx context.Context, actor services.Actor, planID string) ([]*models.Collaborator, error)
	UpdateLastSeen(ctx context.Context, actor services.Actor, planID, collaboratorID string) error
	SubscribeToPlan(ctx context.Context, actor services.Actor, planID string, onPlanUpdate func(*models.Plan), onCollaboratorChange func(), onClosed func(error)) (func(), error)
	GenerateSessionID() string
}

type Server struct {
	address      string
	shares       ShareResolver
	presence     Presence
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       logging.Logger
}

func NewServer(addr string, shares ShareResolver, presence Presence, l logging.Logger) *Server {
	return &Server{
		address:  addr,
		shares:   shares,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// share links are opened from anywhere
			CheckOrigin: func(*http.Request) bool { return true },
		},
		writeTimeout: 10 * time.Second,
		logger:       l.With("module", "web_server"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/shared/{token}", func(r chi.Router) {
		r.Get("/", s.handleShared)
		r.Get("/live", s.handleLive)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
