package grpc

import (
	"context"

	"github.com/dmitrijs2005/ideaforge/internal/api"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/generator"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const watchBuffer = 16

func (s *GRPCServer) CreatePlan(ctx context.Context, req *api.CreatePlanRequest) (*api.PlanResponse, error) {
	var content models.Content
	if req.Content != nil {
		content = *req.Content
	} else {
		content = generator.GeneratePlan(req.Idea)
	}
	title := req.Title
	if title == "" {
		title = req.Idea
	}

	plan, err := s.svc.Plans.CreatePlan(ctx, userIDFrom(ctx), title, req.Idea, content)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.PlanResponse{Plan: plan, Permission: common.PermissionEdit}, nil
}

func (s *GRPCServer) GetPlan(ctx context.Context, req *api.PlanRequest) (*api.PlanResponse, error) {
	plan, perm, err := s.svc.Plans.GetPlan(ctx, actorFrom(ctx), req.PlanID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.PlanResponse{Plan: plan, Permission: perm}, nil
}

func (s *GRPCServer) ListPlans(ctx context.Context, _ *api.Empty) (*api.ListPlansResponse, error) {
	plans, err := s.svc.Plans.ListPlans(ctx, userIDFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ListPlansResponse{Plans: plans}, nil
}

func (s *GRPCServer) SavePlan(ctx context.Context, req *api.SavePlanRequest) (*api.SavePlanResponse, error) {
	plan, v, err := s.svc.Plans.SavePlan(ctx, actorFrom(ctx), req.PlanID, req.BaseVersion, req.Title, req.Content)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.SavePlanResponse{Plan: plan, Version: v}, nil
}

func (s *GRPCServer) UpdatePlan(ctx context.Context, req *api.UpdatePlanRequest) (*api.SavePlanResponse, error) {
	plan, v, err := s.svc.Plans.UpdatePlan(ctx, actorFrom(ctx), req.PlanID, req.Patch)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.SavePlanResponse{Plan: plan, Version: v}, nil
}

func (s *GRPCServer) DeletePlan(ctx context.Context, req *api.PlanRequest) (*api.Empty, error) {
	if err := s.svc.Plans.DeletePlan(ctx, userIDFrom(ctx), req.PlanID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListVersions(ctx context.Context, req *api.PlanRequest) (*api.ListVersionsResponse, error) {
	versions, err := s.svc.Versions.GetVersions(ctx, actorFrom(ctx), req.PlanID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ListVersionsResponse{Versions: versions}, nil
}

func (s *GRPCServer) GetVersion(ctx context.Context, req *api.GetVersionRequest) (*api.VersionResponse, error) {
	v, err := s.svc.Versions.GetVersion(ctx, actorFrom(ctx), req.PlanID, req.VersionNumber)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.VersionResponse{Version: v}, nil
}

func (s *GRPCServer) DeleteVersion(ctx context.Context, req *api.DeleteVersionRequest) (*api.Empty, error) {
	if err := s.svc.Versions.DeleteVersion(ctx, userIDFrom(ctx), req.VersionID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) CompareVersions(ctx context.Context, req *api.CompareVersionsRequest) (*api.CompareVersionsResponse, error) {
	diffs, summary, err := s.svc.Versions.Compare(ctx, actorFrom(ctx), req.PlanID, req.Older, req.Newer)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.CompareVersionsResponse{Diffs: diffs, Summary: summary}, nil
}

func (s *GRPCServer) shareResponse(link *models.ShareLink) *api.ShareLinkResponse {
	return &api.ShareLinkResponse{Share: link, URL: s.svc.Shares.ShareURL(link.Token)}
}

func (s *GRPCServer) CreateShareLink(ctx context.Context, req *api.CreateShareLinkRequest) (*api.ShareLinkResponse, error) {
	link, err := s.svc.Shares.CreateShareLink(ctx, userIDFrom(ctx), req.PlanID, req.Permission, req.ExpiresInDays)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.shareResponse(link), nil
}

func (s *GRPCServer) ListShareLinks(ctx context.Context, req *api.PlanRequest) (*api.ListShareLinksResponse, error) {
	links, err := s.svc.Shares.GetShareLinks(ctx, userIDFrom(ctx), req.PlanID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := &api.ListShareLinksResponse{Shares: make([]*api.ShareLinkResponse, 0, len(links))}
	for _, l := range links {
		out.Shares = append(out.Shares, s.shareResponse(l))
	}
	return out, nil
}

func (s *GRPCServer) GetShareByToken(ctx context.Context, req *api.GetShareByTokenRequest) (*api.ShareLinkResponse, error) {
	link, err := s.svc.Shares.GetShareByToken(ctx, req.Token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.shareResponse(link), nil
}

func (s *GRPCServer) RevokeShareLink(ctx context.Context, req *api.ShareRequest) (*api.Empty, error) {
	if err := s.svc.Shares.RevokeShareLink(ctx, userIDFrom(ctx), req.ShareID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) UpdateSharePermission(ctx context.Context, req *api.UpdateSharePermissionRequest) (*api.Empty, error) {
	if err := s.svc.Shares.UpdateSharePermission(ctx, userIDFrom(ctx), req.ShareID, req.Permission); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) DeleteShareLink(ctx context.Context, req *api.ShareRequest) (*api.Empty, error) {
	if err := s.svc.Shares.DeleteShareLink(ctx, userIDFrom(ctx), req.ShareID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) JoinPlan(ctx context.Context, req *api.JoinPlanRequest) (*api.CollaboratorResponse, error) {
	c, err := s.svc.Presence.Join(ctx, actorFrom(ctx), req.PlanID, req.SessionID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.CollaboratorResponse{Collaborator: c}, nil
}

func (s *GRPCServer) ListCollaborators(ctx context.Context, req *api.PlanRequest) (*api.ListCollaboratorsResponse, error) {
	list, err := s.svc.Presence.GetActiveCollaborators(ctx, actorFrom(ctx), req.PlanID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ListCollaboratorsResponse{Collaborators: list}, nil
}

// Heartbeat fails only when the caller has no access to the plan; store
// errors are absorbed by the presence service.
func (s *GRPCServer) Heartbeat(ctx context.Context, req *api.HeartbeatRequest) (*api.Empty, error) {
	if err := s.svc.Presence.UpdateLastSeen(ctx, actorFrom(ctx), req.PlanID, req.CollaboratorID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) Chat(ctx context.Context, req *api.ChatRequest) (*models.ChatReply, error) {
	reply, err := s.svc.Chat.SendMessage(ctx, userIDFrom(ctx), req.Messages)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply, nil
}

func (s *GRPCServer) ExportPlan(ctx context.Context, req *api.PlanRequest) (*api.ExportPlanResponse, error) {
	url, err := s.svc.Archive.ExportPlan(ctx, userIDFrom(ctx), req.PlanID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ExportPlanResponse{URL: url}, nil
}

// Watch relays plan and collaborator events until the client goes away,
// the viewer loses access or the server shuts down.
func (s *GRPCServer) Watch(req *api.PlanRequest, stream grpc.ServerStreamingServer[models.Event]) error {
	ctx := stream.Context()
	events := make(chan models.Event, watchBuffer)
	closed := make(chan error, 1)

	push := func(ev models.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	unsubscribe, err := s.svc.Presence.SubscribeToPlan(ctx, actorFrom(ctx), req.PlanID,
		func(p *models.Plan) {
			push(models.Event{Type: models.EventPlanUpdated, PlanID: p.ID, Plan: p})
		},
		func() {
			push(models.Event{Type: models.EventCollaboratorsChanged, PlanID: req.PlanID})
		},
		func(err error) {
			closed <- err
		},
	)
	if err != nil {
		return s.toStatus(ctx, err)
	}
	defer unsubscribe()

	s.logger.Debug(ctx, "watch started", "plan_id", req.PlanID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopping():
			return status.Error(codes.Unavailable, "server shutting down")
		case err := <-closed:
			return s.toStatus(ctx, err)
		case ev := <-events:
			if err := stream.Send(&ev); err != nil {
				return err
			}
		}
	}
}
