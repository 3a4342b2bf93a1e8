package api

import (
	"context"

	"github.com/dmitrijs2005/ideaforge/internal/models"
	"google.golang.org/grpc"
)

const ServiceName = "ideaforge.v1.PlanService"

// UpstreamPrefix starts the message of an Unavailable status raised by the
// assistant upstream, so clients can tell it apart from a transport failure.
const UpstreamPrefix = "upstream: "

// MethodPrefix is prepended to a method name to form its full name.
const MethodPrefix = "/" + ServiceName + "/"

const (
	MethodCreatePlan            = MethodPrefix + "CreatePlan"
	MethodGetPlan               = MethodPrefix + "GetPlan"
	MethodListPlans             = MethodPrefix + "ListPlans"
	MethodSavePlan              = MethodPrefix + "SavePlan"
	MethodUpdatePlan            = MethodPrefix + "UpdatePlan"
	MethodDeletePlan            = MethodPrefix + "DeletePlan"
	MethodListVersions          = MethodPrefix + "ListVersions"
	MethodGetVersion            = MethodPrefix + "GetVersion"
	MethodDeleteVersion         = MethodPrefix + "DeleteVersion"
	MethodCompareVersions       = MethodPrefix + "CompareVersions"
	MethodCreateShareLink       = MethodPrefix + "CreateShareLink"
	MethodListShareLinks        = MethodPrefix + "ListShareLinks"
	MethodGetShareByToken       = MethodPrefix + "GetShareByToken"
	MethodRevokeShareLink       = MethodPrefix + "RevokeShareLink"
	MethodUpdateSharePermission = MethodPrefix + "UpdateSharePermission"
	MethodDeleteShareLink       = MethodPrefix + "DeleteShareLink"
	MethodJoinPlan              = MethodPrefix + "JoinPlan"
	MethodListCollaborators     = MethodPrefix + "ListCollaborators"
	MethodHeartbeat             = MethodPrefix + "Heartbeat"
	MethodChat                  = MethodPrefix + "Chat"
	MethodExportPlan            = MethodPrefix + "ExportPlan"
	MethodWatch                 = MethodPrefix + "Watch"
)

// PlanServiceServer is implemented by the gRPC server.
type PlanServiceServer interface {
	CreatePlan(context.Context, *CreatePlanRequest) (*PlanResponse, error)
	GetPlan(context.Context, *PlanRequest) (*PlanResponse, error)
	ListPlans(context.Context, *Empty) (*ListPlansResponse, error)
	SavePlan(context.Context, *SavePlanRequest) (*SavePlanResponse, error)
	UpdatePlan(context.Context, *UpdatePlanRequest) (*SavePlanResponse, error)
	DeletePlan(context.Context, *PlanRequest) (*Empty, error)

	ListVersions(context.Context, *PlanRequest) (*ListVersionsResponse, error)
	GetVersion(context.Context, *GetVersionRequest) (*VersionResponse, error)
	DeleteVersion(context.Context, *DeleteVersionRequest) (*Empty, error)
	CompareVersions(context.Context, *CompareVersionsRequest) (*CompareVersionsResponse, error)

	CreateShareLink(context.Context, *CreateShareLinkRequest) (*ShareLinkResponse, error)
	ListShareLinks(context.Context, *PlanRequest) (*ListShareLinksResponse, error)
	GetShareByToken(context.Context, *GetShareByTokenRequest) (*ShareLinkResponse, error)
	RevokeShareLink(context.Context, *ShareRequest) (*Empty, error)
	UpdateSharePermission(context.Context, *UpdateSharePermissionRequest) (*Empty, error)
	DeleteShareLink(context.Context, *ShareRequest) (*Empty, error)

	JoinPlan(context.Context, *JoinPlanRequest) (*CollaboratorResponse, error)
	ListCollaborators(context.Context, *PlanRequest) (*ListCollaboratorsResponse, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*Empty, error)

	Chat(context.Context, *ChatRequest) (*models.ChatReply, error)
	ExportPlan(context.Context, *PlanRequest) (*ExportPlanResponse, error)

	Watch(*PlanRequest, grpc.ServerStreamingServer[models.Event]) error
}

// unary adapts a typed server method to grpc.MethodHandler.
func unary[Req, Resp any](method string, call func(PlanServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PlanServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PlanServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func method[Req, Resp any](name string, call func(PlanServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{MethodName: name, Handler: unary(MethodPrefix+name, call)}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(PlanRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(PlanServiceServer).Watch(in, &grpc.GenericServerStream[PlanRequest, models.Event]{ServerStream: stream})
}

var PlanService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlanServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("CreatePlan", PlanServiceServer.CreatePlan),
		method("GetPlan", PlanServiceServer.GetPlan),
		method("ListPlans", PlanServiceServer.ListPlans),
		method("SavePlan", PlanServiceServer.SavePlan),
		method("UpdatePlan", PlanServiceServer.UpdatePlan),
		method("DeletePlan", PlanServiceServer.DeletePlan),
		method("ListVersions", PlanServiceServer.ListVersions),
		method("GetVersion", PlanServiceServer.GetVersion),
		method("DeleteVersion", PlanServiceServer.DeleteVersion),
		method("CompareVersions", PlanServiceServer.CompareVersions),
		method("CreateShareLink", PlanServiceServer.CreateShareLink),
		method("ListShareLinks", PlanServiceServer.ListShareLinks),
		method("GetShareByToken", PlanServiceServer.GetShareByToken),
		method("RevokeShareLink", PlanServiceServer.RevokeShareLink),
		method("UpdateSharePermission", PlanServiceServer.UpdateSharePermission),
		method("DeleteShareLink", PlanServiceServer.DeleteShareLink),
		method("JoinPlan", PlanServiceServer.JoinPlan),
		method("ListCollaborators", PlanServiceServer.ListCollaborators),
		method("Heartbeat", PlanServiceServer.Heartbeat),
		method("Chat", PlanServiceServer.Chat),
		method("ExportPlan", PlanServiceServer.ExportPlan),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
}

func RegisterPlanServiceServer(s grpc.ServiceRegistrar, srv PlanServiceServer) {
	s.RegisterService(&PlanService_ServiceDesc, srv)
}
