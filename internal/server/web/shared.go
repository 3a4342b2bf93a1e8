package web

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	FrameJoined        = "joined"
	FramePlan          = "plan"
	FrameCollaborators = "collaborators"
)

// Frame is one server-to-viewer message on the live channel.
type Frame struct {
	Type           string                 `json:"type"`
	Plan           *models.Plan           `json:"plan,omitempty"`
	Collaborators  []*models.Collaborator `json:"collaborators,omitempty"`
	Permission     string                 `json:"permission,omitempty"`
	SessionID      string                 `json:"session_id,omitempty"`
	CollaboratorID string                 `json:"collaborator_id,omitempty"`
}

type sharedResponse struct {
	Share *models.ShareLink `json:"share"`
	Plan  *models.Plan      `json:"plan"`
}

// resolve answers 404 "access denied" for unknown, expired and revoked
// tokens alike.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*models.ShareLink, *models.Plan, bool) {
	link, plan, err := s.shares.ResolveShare(r.Context(), chi.URLParam(r, "token"))
	if errors.Is(err, common.ErrorNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "access denied"})
		return nil, nil, false
	}
	if err != nil {
		s.logger.Error(r.Context(), "resolve share failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return nil, nil, false
	}
	return link, plan, true
}

func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	link, plan, ok := s.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sharedResponse{Share: link, Plan: plan})
}

// handleLive joins the viewer as a collaborator and streams frames until the
// socket closes or the link stops working. Any inbound message counts as a
// heartbeat.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	link, plan, ok := s.resolve(w, r)
	if !ok {
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = s.presence.GenerateSessionID()
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	actor := services.Actor{ShareToken: link.Token}

	c, err := s.presence.JoinAsCollaborator(ctx, plan.ID, link.Permission, sessionID, "")
	if err != nil {
		s.logger.Error(ctx, "join failed", "plan_id", plan.ID, "error", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "join failed"),
			time.Now().Add(s.writeTimeout))
		return
	}

	out := make(chan Frame, 16)
	lost := make(chan struct{})
	var lostOnce sync.Once
	accessLost := func() { lostOnce.Do(func() { close(lost) }) }

	send := func(f Frame) {
		select {
		case out <- f:
		case <-ctx.Done():
		}
	}
	collaborators := func() []*models.Collaborator {
		list, err := s.presence.GetActiveCollaborators(ctx, actor, plan.ID)
		if err != nil {
			s.logger.Warn(ctx, "list collaborators failed", "plan_id", plan.ID, "error", err)
			return nil
		}
		return list
	}

	var mu sync.Mutex
	unsubscribe, err := s.presence.SubscribeToPlan(ctx, actor, plan.ID,
		func(p *models.Plan) {
			send(Frame{Type: FramePlan, Plan: p})
		},
		func() {
			mu.Lock()
			defer mu.Unlock()
			send(Frame{Type: FrameCollaborators, Collaborators: collaborators()})
		},
		func(error) { accessLost() },
	)
	if err != nil {
		s.logger.Error(ctx, "subscribe failed", "plan_id", plan.ID, "error", err)
		return
	}
	defer unsubscribe()

	send(Frame{
		Type:           FrameJoined,
		Plan:           plan,
		Collaborators:  collaborators(),
		Permission:     link.Permission,
		SessionID:      sessionID,
		CollaboratorID: c.ID,
	})

	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
			if err := s.presence.UpdateLastSeen(ctx, actor, plan.ID, c.ID); err != nil {
				accessLost()
				return
			}
			mu.Lock()
			send(Frame{Type: FrameCollaborators, Collaborators: collaborators()})
			mu.Unlock()
		}
	}()

	s.logger.Info(ctx, "live viewer connected", "plan_id", plan.ID, "session_id", sessionID)

	for {
		select {
		case <-ctx.Done():
			select {
			case <-lost:
				s.closeDenied(ctx, ws, plan.ID)
			default:
			}
			return
		case <-lost:
			s.closeDenied(ctx, ws, plan.ID)
			return
		case f := <-out:
			_ = ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := ws.WriteJSON(f); err != nil {
				s.logger.Debug(ctx, "live write failed", "plan_id", plan.ID, "error", err)
				return
			}
		}
	}
}

func (s *Server) closeDenied(ctx context.Context, ws *websocket.Conn, planID string) {
	s.logger.Info(ctx, "live viewer lost access", "plan_id", planID)
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "access denied"),
		time.Now().Add(s.writeTimeout))
}
