package domain

import "context"

type sessionKey struct{}

// SessionUser carries the signed-in admin identity through request context.
type SessionUser struct {
	ID       int64
	Username string
}

// WithSessionUser stores a SessionUser in the context.
func WithSessionUser(ctx context.Context, u SessionUser) context.Context {
	return context.WithValue(ctx, sessionKey{}, u)
}

// SessionUserFromContext extracts the SessionUser from the context.
func SessionUserFromContext(ctx context.Context) (SessionUser, bool) {
	u, ok := ctx.Value(sessionKey{}).(SessionUser)
	return u, ok
}
