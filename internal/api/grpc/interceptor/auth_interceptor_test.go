package interceptor

import (
	"context"
	"testing"
	"time"

	"rental-engine-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuthInterceptor_Unary(t *testing.T) {
	tm := security.NewTokenManager(testSecret, time.Hour)
	unary := NewAuthInterceptor(tm).Unary()

	var seen context.Context
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = ctx
		return "ok", nil
	}

	t.Run("PublicHealthCheck", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
		resp, err := unary(context.Background(), nil, info, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("MissingToken", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: "/grpc.reflection.v1.ServerReflection/ServerReflectionInfo"}
		_, err := unary(metadata.NewIncomingContext(context.Background(), metadata.MD{}), nil, info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("InvalidToken", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: "/some.Service/Method"}
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := unary(ctx, nil, info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("ValidTokenOverridesUserID", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(9, "staff@test.com", nil)
		require.NoError(t, err)
		info := &grpc.UnaryServerInfo{FullMethod: "/some.Service/Method"}
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token, "user-id", "1"))

		_, err = unary(ctx, nil, info, handler)
		require.NoError(t, err)
		md, _ := metadata.FromIncomingContext(seen)
		assert.Equal(t, []string{"9"}, md.Get("user-id"))
	})
}
