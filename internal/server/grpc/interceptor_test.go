package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/ideaforge/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestInterceptor(t *testing.T) {
	s := newTestServer(Services{})

	tests := []struct {
		name      string
		method    string
		md        metadata.MD
		wantCode  codes.Code
		wantUser  string
		wantShare string
	}{
		{name: "anonymous on open method", method: api.MethodGetPlan, wantCode: codes.OK},
		{name: "share token only", method: api.MethodGetPlan, md: metadata.Pairs("share_token", "abcDEF123456"), wantCode: codes.OK, wantShare: "abcDEF123456"},
		{name: "valid token", method: api.MethodCreatePlan, md: metadata.Pairs("access_token", "good"), wantCode: codes.OK, wantUser: "user-1"},
		{name: "owner-only without token", method: api.MethodCreatePlan, md: metadata.Pairs("share_token", "abcDEF123456"), wantCode: codes.Unauthenticated},
		{name: "bad token on open method", method: api.MethodGetPlan, md: metadata.Pairs("access_token", "forged"), wantCode: codes.Unauthenticated},
		{name: "expired token", method: api.MethodListPlans, md: metadata.Pairs("access_token", "expired"), wantCode: codes.Unauthenticated},
		{name: "both credentials", method: api.MethodSavePlan, md: metadata.Pairs("access_token", "good", "share_token", "abcDEF123456"), wantCode: codes.OK, wantUser: "user-1", wantShare: "abcDEF123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}

			called := false
			h := func(ctx context.Context, req any) (any, error) {
				called = true
				a := actorFrom(ctx)
				assert.Equal(t, tt.wantUser, a.UserID)
				assert.Equal(t, tt.wantShare, a.ShareToken)
				return "ok", nil
			}

			resp, err := s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, h)
			if tt.wantCode == codes.OK {
				require.NoError(t, err)
				assert.True(t, called)
				assert.Equal(t, "ok", resp)
				return
			}
			assert.False(t, called, "handler must not run")
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

type ctxStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (c ctxStream) Context() context.Context { return c.ctx }

func TestStreamInterceptor(t *testing.T) {
	s := newTestServer(Services{})
	info := &grpc.StreamServerInfo{FullMethod: api.MethodWatch, IsServerStream: true}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("share_token", "abcDEF123456"))
	var got string
	err := s.streamAccessTokenInterceptor(nil, ctxStream{ctx: ctx}, info, func(srv any, ss grpc.ServerStream) error {
		got = actorFrom(ss.Context()).ShareToken
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "abcDEF123456", got)

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("access_token", "forged"))
	err = s.streamAccessTokenInterceptor(nil, ctxStream{ctx: ctx}, info, func(any, grpc.ServerStream) error {
		t.Fatal("handler should not be called")
		return nil
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
