package httputil

import (
	"context"
	"fmt"

	"studiodrive/internal/domain"
)

// Context key type to avoid collisions
type contextKey string

const (
	userEmailKey contextKey = "userEmail"
)

// WithUserEmail stores the authenticated principal in ctx
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserEmail returns the authenticated principal, or ErrUnauthorized when absent
func GetUserEmail(ctx context.Context) (string, error) {
	email, _ := ctx.Value(userEmailKey).(string)
	if email == "" {
		return "", fmt.Errorf("no authenticated principal: %w", domain.ErrUnauthorized)
	}
	return email, nil
}
