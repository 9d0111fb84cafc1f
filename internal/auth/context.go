package auth

import "context"

type contextKey struct{}

// Identity is the caller as asserted by the trusted gateway.
type Identity struct {
	UserID int64
}

func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKey{}, Identity{UserID: userID})
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// UserID returns the caller's ID, or 0 when the request is anonymous.
func UserID(ctx context.Context) int64 {
	id, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return id.UserID
}
