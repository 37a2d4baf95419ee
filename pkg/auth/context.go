package auth

import (
	"context"
	"errors"
)

// UserContext carries the authenticated caller's identity through a request
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

type contextKey string

const userContextKey contextKey = "auth.user"

// ErrNoUserInContext is returned when a request reaches an authenticated
// handler without a user context
var ErrNoUserInContext = errors.New("no authenticated user in context")

// SetUserInContext stores the authenticated user on the context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, ErrNoUserInContext
	}
	return user, nil
}
