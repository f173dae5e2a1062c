package userctx

import "context"

// Context key type
type contextKey string

const refreshTokenKey contextKey = "refresh_token"

// SetRefreshToken adds the caller's refresh token to request context
func SetRefreshToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, refreshTokenKey, token)
}

// GetRefreshToken retrieves the refresh token from request context
func GetRefreshToken(ctx context.Context) string {
	if token, ok := ctx.Value(refreshTokenKey).(string); ok {
		return token
	}
	return ""
}
