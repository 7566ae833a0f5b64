package util

import "context"

type sessionKeyCtx struct{}

// WithSessionKey attaches the UI session key forwarded to the upstream backend.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyCtx{}, key)
}

// SessionKey returns the session key stored in ctx, if any.
func SessionKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(sessionKeyCtx{}).(string)
	return key, ok && key != ""
}
