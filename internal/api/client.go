package api

import (
	"context"

	"github.com/dmitrijs2005/ideaforge/internal/models"
	"google.golang.org/grpc"
)

// PlanServiceClient is the client side of ideaforge.v1.PlanService.
type PlanServiceClient interface {
	CreatePlan(ctx context.Context, in *CreatePlanRequest, opts ...grpc.CallOption) (*PlanResponse, error)
	GetPlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*PlanResponse, error)
	ListPlans(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListPlansResponse, error)
	SavePlan(ctx context.Context, in *SavePlanRequest, opts ...grpc.CallOption) (*SavePlanResponse, error)
	UpdatePlan(ctx context.Context, in *UpdatePlanRequest, opts ...grpc.CallOption) (*SavePlanResponse, error)
	DeletePlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*Empty, error)

	ListVersions(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*ListVersionsResponse, error)
	GetVersion(ctx context.Context, in *GetVersionRequest, opts ...grpc.CallOption) (*VersionResponse, error)
	DeleteVersion(ctx context.Context, in *DeleteVersionRequest, opts ...grpc.CallOption) (*Empty, error)
	CompareVersions(ctx context.Context, in *CompareVersionsRequest, opts ...grpc.CallOption) (*CompareVersionsResponse, error)

	CreateShareLink(ctx context.Context, in *CreateShareLinkRequest, opts ...grpc.CallOption) (*ShareLinkResponse, error)
	ListShareLinks(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*ListShareLinksResponse, error)
	GetShareByToken(ctx context.Context, in *GetShareByTokenRequest, opts ...grpc.CallOption) (*ShareLinkResponse, error)
	RevokeShareLink(ctx context.Context, in *ShareRequest, opts ...grpc.CallOption) (*Empty, error)
	UpdateSharePermission(ctx context.Context, in *UpdateSharePermissionRequest, opts ...grpc.CallOption) (*Empty, error)
	DeleteShareLink(ctx context.Context, in *ShareRequest, opts ...grpc.CallOption) (*Empty, error)

	JoinPlan(ctx context.Context, in *JoinPlanRequest, opts ...grpc.CallOption) (*CollaboratorResponse, error)
	ListCollaborators(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*ListCollaboratorsResponse, error)
	Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*Empty, error)

	Chat(ctx context.Context, in *ChatRequest, opts ...grpc.CallOption) (*models.ChatReply, error)
	ExportPlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*ExportPlanResponse, error)

	Watch(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[models.Event], error)
}

type planServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPlanServiceClient wraps cc. Every call is sent with the JSON codec.
func NewPlanServiceClient(cc grpc.ClientConnInterface) PlanServiceClient {
	return &planServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *planServiceClient) CreatePlan(ctx context.Context, in *CreatePlanRequest, opts ...grpc.CallOption) (*PlanResponse, error) {
	return invoke[PlanResponse](ctx, c.cc, MethodCreatePlan, in, opts)
}

func (c *planServiceClient) GetPlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*PlanResponse, error) {
	return invoke[PlanResponse](ctx, c.cc, MethodGetPlan, in, opts)
}

func (c *planServiceClient) ListPlans(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListPlansResponse, error) {
	return invoke[ListPlansResponse](ctx, c.cc, MethodListPlans, in, opts)
}

func (c *planServiceClient) SavePlan(ctx context.Context, in *SavePlanRequest, opts ...grpc.CallOption) (*SavePlanResponse, error) {
	return invoke[SavePlanResponse](ctx, c.cc, MethodSavePlan, in, opts)
}

func (c *planServiceClient) UpdatePlan(ctx context.Context, in *UpdatePlanRequest, opts ...grpc.CallOption) (*SavePlanResponse, error) {
	return invoke[SavePlanResponse](ctx, c.cc, MethodUpdatePlan, in, opts)
}

func (c *planServiceClient) DeletePlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeletePlan, in, opts)
}

func (c *planServiceClient) ListVersions(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*ListVersionsResponse, error) {
	return invoke[ListVersionsResponse](ctx, c.cc, MethodListVersions, in, opts)
}

func (c *planServiceClient) GetVersion(ctx context.Context, in *GetVersionRequest, opts ...grpc.CallOption) (*VersionResponse, error) {
	return invoke[VersionResponse](ctx, c.cc, MethodGetVersion, in, opts)
}

func (c *planServiceClient) DeleteVersion(ctx context.Context, in *DeleteVersionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteVersion, in, opts)
}

func (c *planServiceClient) CompareVersions(ctx context.Context, in *CompareVersionsRequest, opts ...grpc.CallOption) (*CompareVersionsResponse, error) {
	return invoke[CompareVersionsResponse](ctx, c.cc, MethodCompareVersions, in, opts)
}

func (c *planServiceClient) CreateShareLink(ctx context.Context, in *CreateShareLinkRequest, opts ...grpc.CallOption) (*ShareLinkResponse, error) {
	return invoke[ShareLinkResponse](ctx, c.cc, MethodCreateShareLink, in, opts)
}

func (c *planServiceClient) ListShareLinks(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*ListShareLinksResponse, error) {
	return invoke[ListShareLinksResponse](ctx, c.cc, MethodListShareLinks, in, opts)
}

func (c *planServiceClient) GetShareByToken(ctx context.Context, in *GetShareByTokenRequest, opts ...grpc.CallOption) (*ShareLinkResponse, error) {
	return invoke[ShareLinkResponse](ctx, c.cc, MethodGetShareByToken, in, opts)
}

func (c *planServiceClient) RevokeShareLink(ctx context.Context, in *ShareRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodRevokeShareLink, in, opts)
}

func (c *planServiceClient) UpdateSharePermission(ctx context.Context, in *UpdateSharePermissionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodUpdateSharePermission, in, opts)
}

func (c *planServiceClient) DeleteShareLink(ctx context.Context, in *ShareRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteShareLink, in, opts)
}

func (c *planServiceClient) JoinPlan(ctx context.Context, in *JoinPlanRequest, opts ...grpc.CallOption) (*CollaboratorResponse, error) {
	return invoke[CollaboratorResponse](ctx, c.cc, MethodJoinPlan, in, opts)
}

func (c *planServiceClient) ListCollaborators(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*ListCollaboratorsResponse, error) {
	return invoke[ListCollaboratorsResponse](ctx, c.cc, MethodListCollaborators, in, opts)
}

func (c *planServiceClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodHeartbeat, in, opts)
}

func (c *planServiceClient) Chat(ctx context.Context, in *ChatRequest, opts ...grpc.CallOption) (*models.ChatReply, error) {
	return invoke[models.ChatReply](ctx, c.cc, MethodChat, in, opts)
}

func (c *planServiceClient) ExportPlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*ExportPlanResponse, error) {
	return invoke[ExportPlanResponse](ctx, c.cc, MethodExportPlan, in, opts)
}

func (c *planServiceClient) Watch(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[models.Event], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &PlanService_ServiceDesc.Streams[0], MethodWatch, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[PlanRequest, models.Event]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
