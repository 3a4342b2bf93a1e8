// Package grpc exposes the plan services over gRPC using the hand-written
// ideaforge.v1.PlanService descriptor from internal/api.
package grpc

import (
	"context"
	"net"
	"sync"

	"github.com/dmitrijs2005/ideaforge/internal/api"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/services"
	"google.golang.org/grpc"
)

type PlanService interface {
	CreatePlan(ctx context.Context, ownerID, title, idea string, content models.Content) (*models.Plan, error)
	GetPlan(ctx context.Context, actor services.Actor, planID string) (*models.Plan, string, error)
	ListPlans(ctx context.Context, ownerID string) ([]*models.Plan, error)
	SavePlan(ctx context.Context, actor services.Actor, planID string, baseVersion int, title string, content models.Content) (*models.Plan, *models.Version, error)
	UpdatePlan(ctx context.Context, actor services.Actor, planID string, patch models.PlanPatch) (*models.Plan, *models.Version, error)
	DeletePlan(ctx context.Context, ownerID, planID string) error
}

type VersionService interface {
	GetVersions(ctx context.Context, actor services.Actor, planID string) ([]*models.Version, error)
	GetVersion(ctx context.Context, actor services.Actor, planID string, versionNumber int) (*models.Version, error)
	DeleteVersion(ctx context.Context, ownerID, versionID string) error
	Compare(ctx context.Context, actor services.Actor, planID string, older, newer int) ([]models.Diff, string, error)
}

type ShareService interface {
	CreateShareLink(ctx context.Context, ownerID, planID, permission string, expiresInDays int) (*models.ShareLink, error)
	GetShareLinks(ctx context.Context, ownerID, planID string) ([]*models.ShareLink, error)
	GetShareByToken(ctx context.Context, token string) (*models.ShareLink, error)
	RevokeShareLink(ctx context.Context, ownerID, shareID string) error
	UpdateSharePermission(ctx context.Context, ownerID, shareID, permission string) error
	DeleteShareLink(ctx context.Context, ownerID, shareID string) error
	ShareURL(token string) string
}

type PresenceService interface {
	Join(ctx context.Context, actor services.Actor, planID, sessionID string) (*models.Collaborator, error)
	GetActiveCollaborators(ctx context.Context, actor services.Actor, planID string) ([]*models.Collaborator, error)
	UpdateLastSeen(ctx context.Context, actor services.Actor, planID, collaboratorID string) error
	SubscribeToPlan(ctx context.Context, actor services.Actor, planID string, onPlanUpdate func(*models.Plan), onCollaboratorChange func(), onClosed func(error)) (func(), error)
}

type ChatService interface {
	SendMessage(ctx context.Context, userID string, history []models.ChatMessage) (*models.ChatReply, error)
}

type ArchiveService interface {
	ExportPlan(ctx context.Context, ownerID, planID string) (string, error)
}

// TokenVerifier turns a bearer token into a user id.
type TokenVerifier interface {
	UserID(token string) (string, error)
}

// Services groups the backends the handlers call.
type Services struct {
	Plans    PlanService
	Versions VersionService
	Shares   ShareService
	Presence PresenceService
	Chat     ChatService
	Archive  ArchiveService
}

type GRPCServer struct {
	address  string
	svc      Services
	verifier TokenVerifier
	logger   logging.Logger

	// done is closed when shutdown starts so open Watch streams can end
	// before GracefulStop waits on them.
	done     chan struct{}
	stopOnce sync.Once
}

var _ api.PlanServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, svc Services, verifier TokenVerifier) *GRPCServer {
	return &GRPCServer{
		address:  a,
		svc:      svc,
		verifier: verifier,
		logger:   l.With("module", "grpc_server"),
		done:     make(chan struct{}),
	}
}

// newServer builds the grpc.Server with interceptors and the service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	api.RegisterPlanServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.stopOnce.Do(func() { close(s.done) })
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

// stopping is closed once the server begins shutting down.
func (s *GRPCServer) stopping() <-chan struct{} {
	return s.done
}
