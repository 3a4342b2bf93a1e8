package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/ideaforge/internal/api"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", status.Error(codes.NotFound, "not found"), common.ErrorNotFound},
		{"conflict", status.Error(codes.Aborted, "version conflict"), common.ErrVersionConflict},
		{"forbidden", status.Error(codes.PermissionDenied, "permission denied"), common.ErrorForbidden},
		{"expired", status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error()), common.ErrTokenExpired},
		{"unauthorized", status.Error(codes.Unauthenticated, "unauthorized"), common.ErrorUnauthorized},
		{"validation", status.Error(codes.InvalidArgument, "invalid argument"), common.ErrorValidation},
		{"unavailable", status.Error(codes.Unavailable, "connection refused"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "deadline"), ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, c.mapError(tt.err), tt.want)
		})
	}

	assert.NoError(t, c.mapError(nil))
	plain := errors.New("boom")
	assert.Equal(t, plain, c.mapError(plain))
}

func TestMapChatError_Upstream(t *testing.T) {
	c := &GRPCClient{}

	err := c.mapChatError(status.Error(codes.Unavailable, api.UpstreamPrefix+"quota exceeded"))

	var upstream *common.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "quota exceeded", upstream.Message)
	assert.ErrorIs(t, err, common.ErrUpstream)
}

func TestMapChatError_TransportFailureIsNotUpstream(t *testing.T) {
	c := &GRPCClient{}

	err := c.mapChatError(status.Error(codes.Unavailable, "connection error: desc = dial tcp: connection refused"))

	var upstream *common.UpstreamError
	assert.False(t, errors.As(err, &upstream))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestShareTokenFrom(t *testing.T) {
	assert.Empty(t, ShareTokenFrom(context.Background()))
	assert.Equal(t, "abcDEF123456", ShareTokenFrom(WithShareToken(context.Background(), "abcDEF123456")))
}
