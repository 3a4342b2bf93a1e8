package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/ideaforge/internal/api"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type shareTokenKey struct{}

// WithShareToken marks calls made with ctx as coming from a share-link
// viewer holding token.
func WithShareToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, shareTokenKey{}, token)
}

// ShareTokenFrom returns the token set by WithShareToken, if any.
func ShareTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(shareTokenKey{}).(string)
	return token
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.PlanServiceClient

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withMetadata(ctx context.Context, key, value string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(key)
	md.Set(key, value)

	return metadata.NewOutgoingContext(ctx, md)
}

// outgoing attaches whichever tokens are known to ctx.
func (s *GRPCClient) outgoing(ctx context.Context) context.Context {
	if token := s.token(); token != "" {
		ctx = withMetadata(ctx, common.AccessTokenHeaderName, token)
	}
	if token := ShareTokenFrom(ctx); token != "" {
		ctx = withMetadata(ctx, common.ShareTokenHeaderName, token)
	}
	return ctx
}

func (s *GRPCClient) tokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(s.outgoing(ctx), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(s.outgoing(ctx), desc, cc, method, opts...)
}

func NewIdeaForgeClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.tokenInterceptor),
		grpc.WithStreamInterceptor(s.streamTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewPlanServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.Aborted:
		return common.ErrVersionConflict
	case codes.PermissionDenied:
		return common.ErrorForbidden
	case codes.Unauthenticated:
		if st.Message() == common.ErrTokenExpired.Error() {
			return common.ErrTokenExpired
		}
		return common.ErrorUnauthorized
	case codes.InvalidArgument:
		return common.ErrorValidation
	case codes.Canceled:
		return context.Canceled
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) CreatePlan(ctx context.Context, title, idea string) (*models.Plan, error) {
	resp, err := s.client.CreatePlan(ctx, &api.CreatePlanRequest{Title: title, Idea: idea})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Plan, nil
}

func (s *GRPCClient) GetPlan(ctx context.Context, planID string) (*models.Plan, string, error) {
	resp, err := s.client.GetPlan(ctx, &api.PlanRequest{PlanID: planID})
	if err != nil {
		return nil, "", s.mapError(err)
	}
	return resp.Plan, resp.Permission, nil
}

func (s *GRPCClient) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	resp, err := s.client.ListPlans(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Plans, nil
}

func (s *GRPCClient) SavePlan(ctx context.Context, planID string, baseVersion int, title string, content models.Content) (*models.Plan, *models.Version, error) {
	resp, err := s.client.SavePlan(ctx, &api.SavePlanRequest{PlanID: planID, BaseVersion: baseVersion, Title: title, Content: content})
	if err != nil {
		return nil, nil, s.mapError(err)
	}
	return resp.Plan, resp.Version, nil
}

func (s *GRPCClient) UpdatePlan(ctx context.Context, planID string, patch models.PlanPatch) (*models.Plan, *models.Version, error) {
	resp, err := s.client.UpdatePlan(ctx, &api.UpdatePlanRequest{PlanID: planID, Patch: patch})
	if err != nil {
		return nil, nil, s.mapError(err)
	}
	return resp.Plan, resp.Version, nil
}

func (s *GRPCClient) DeletePlan(ctx context.Context, planID string) error {
	_, err := s.client.DeletePlan(ctx, &api.PlanRequest{PlanID: planID})
	return s.mapError(err)
}

func (s *GRPCClient) ListVersions(ctx context.Context, planID string) ([]*models.Version, error) {
	resp, err := s.client.ListVersions(ctx, &api.PlanRequest{PlanID: planID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Versions, nil
}

func (s *GRPCClient) GetVersion(ctx context.Context, planID string, versionNumber int) (*models.Version, error) {
	resp, err := s.client.GetVersion(ctx, &api.GetVersionRequest{PlanID: planID, VersionNumber: versionNumber})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Version, nil
}

func (s *GRPCClient) DeleteVersion(ctx context.Context, versionID string) error {
	_, err := s.client.DeleteVersion(ctx, &api.DeleteVersionRequest{VersionID: versionID})
	return s.mapError(err)
}

func (s *GRPCClient) CompareVersions(ctx context.Context, planID string, older, newer int) ([]models.Diff, string, error) {
	resp, err := s.client.CompareVersions(ctx, &api.CompareVersionsRequest{PlanID: planID, Older: older, Newer: newer})
	if err != nil {
		return nil, "", s.mapError(err)
	}
	return resp.Diffs, resp.Summary, nil
}

func (s *GRPCClient) CreateShareLink(ctx context.Context, planID, permission string, expiresInDays int) (*models.ShareLink, string, error) {
	resp, err := s.client.CreateShareLink(ctx, &api.CreateShareLinkRequest{PlanID: planID, Permission: permission, ExpiresInDays: expiresInDays})
	if err != nil {
		return nil, "", s.mapError(err)
	}
	return resp.Share, resp.URL, nil
}

func (s *GRPCClient) ListShareLinks(ctx context.Context, planID string) ([]*models.ShareLink, error) {
	resp, err := s.client.ListShareLinks(ctx, &api.PlanRequest{PlanID: planID})
	if err != nil {
		return nil, s.mapError(err)
	}
	links := make([]*models.ShareLink, 0, len(resp.Shares))
	for _, sh := range resp.Shares {
		links = append(links, sh.Share)
	}
	return links, nil
}

func (s *GRPCClient) GetShareByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	resp, err := s.client.GetShareByToken(ctx, &api.GetShareByTokenRequest{Token: token})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Share, nil
}

func (s *GRPCClient) RevokeShareLink(ctx context.Context, shareID string) error {
	_, err := s.client.RevokeShareLink(ctx, &api.ShareRequest{ShareID: shareID})
	return s.mapError(err)
}

func (s *GRPCClient) UpdateSharePermission(ctx context.Context, shareID, permission string) error {
	_, err := s.client.UpdateSharePermission(ctx, &api.UpdateSharePermissionRequest{ShareID: shareID, Permission: permission})
	return s.mapError(err)
}

func (s *GRPCClient) DeleteShareLink(ctx context.Context, shareID string) error {
	_, err := s.client.DeleteShareLink(ctx, &api.ShareRequest{ShareID: shareID})
	return s.mapError(err)
}

func (s *GRPCClient) JoinPlan(ctx context.Context, planID, sessionID string) (*models.Collaborator, error) {
	resp, err := s.client.JoinPlan(ctx, &api.JoinPlanRequest{PlanID: planID, SessionID: sessionID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Collaborator, nil
}

func (s *GRPCClient) ListCollaborators(ctx context.Context, planID string) ([]*models.Collaborator, error) {
	resp, err := s.client.ListCollaborators(ctx, &api.PlanRequest{PlanID: planID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Collaborators, nil
}

func (s *GRPCClient) Heartbeat(ctx context.Context, planID, collaboratorID string) error {
	_, err := s.client.Heartbeat(ctx, &api.HeartbeatRequest{PlanID: planID, CollaboratorID: collaboratorID})
	return s.mapError(err)
}

type eventStream struct {
	s      *GRPCClient
	stream grpc.ServerStreamingClient[models.Event]
}

func (e *eventStream) Recv() (*models.Event, error) {
	ev, err := e.stream.Recv()
	if err != nil {
		return nil, e.s.mapError(err)
	}
	return ev, nil
}

func (s *GRPCClient) Watch(ctx context.Context, planID string) (EventStream, error) {
	stream, err := s.client.Watch(ctx, &api.PlanRequest{PlanID: planID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &eventStream{s: s, stream: stream}, nil
}

// Chat reports assistant failures as *common.UpstreamError carrying the
// server's message. An unreachable server is still ErrUnavailable.
func (s *GRPCClient) Chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatReply, error) {
	resp, err := s.client.Chat(ctx, &api.ChatRequest{Messages: messages})
	if err != nil {
		return nil, s.mapChatError(err)
	}
	return resp, nil
}

func (s *GRPCClient) mapChatError(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.Unavailable {
		if msg, found := strings.CutPrefix(st.Message(), api.UpstreamPrefix); found {
			return &common.UpstreamError{Message: msg}
		}
	}
	return s.mapError(err)
}

func (s *GRPCClient) ExportPlan(ctx context.Context, planID string) (string, error) {
	resp, err := s.client.ExportPlan(ctx, &api.PlanRequest{PlanID: planID})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}

// IsAuthError reports whether err means the caller must log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrTokenExpired)
}
