package common

import (
	"context"

	"authhub/internal/models"
)

type contextKey string

const UserKey contextKey = "user"

// WithUser stores the authenticated user on the request context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUserFromContext extracts the authenticated user set by the
// bearer-token middleware.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}
