package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/ideaforge/internal/api"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. Unknown errors are logged
// and hidden behind a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var upstream *common.UpstreamError
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrVersionConflict):
		return status.Error(codes.Aborted, "version conflict")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "permission denied")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, "invalid argument")
	case errors.As(err, &upstream):
		return status.Error(codes.Unavailable, api.UpstreamPrefix+upstream.Message)
	case errors.Is(err, common.ErrUpstream):
		return status.Error(codes.Unavailable, api.UpstreamPrefix+"assistant unavailable")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
