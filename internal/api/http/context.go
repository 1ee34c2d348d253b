package http

import (
	"context"
	"errors"
)

type contextKey string

const userIDKey contextKey = "user-id"

var errNoUser = errors.New("user_id is not present in request context")

func withUserID(ctx context.Context, userID int32) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext returns the authenticated caller set by the auth middleware.
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	userID, ok := ctx.Value(userIDKey).(int32)
	if !ok || userID == 0 {
		return 0, errNoUser
	}
	return userID, nil
}
