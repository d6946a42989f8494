package middleware

import (
	"context"

	"github.com/daybrief/daybrief/pkg/models"
)

type contextKey string

const (
	identityKey    contextKey = "identity"
	accessTokenKey contextKey = "access_token"
)

// SetIdentity stores the verified Identity in the context.
func SetIdentity(ctx context.Context, identity *models.Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the verified Identity from the context.
// Returns nil when the request did not pass the auth middleware.
func GetIdentity(ctx context.Context) *models.Identity {
	if v, ok := ctx.Value(identityKey).(*models.Identity); ok {
		return v
	}
	return nil
}

// SetAccessToken stores the raw bearer credential. The calendar fetch
// reuses it as the user's access token, so handlers need it alongside the
// Identity.
func SetAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey, token)
}

// GetAccessToken retrieves the raw bearer credential from the context.
func GetAccessToken(ctx context.Context) string {
	if v, ok := ctx.Value(accessTokenKey).(string); ok {
		return v
	}
	return ""
}
