package domain

import "context"

// Caller is the identity on whose behalf a service operation runs. It is
// passed explicitly to every public operation; the request context only
// carries it between the auth middleware and the handlers.
type Caller struct {
	UserID   string
	Username string
	IsAdmin  bool
}

type callerKey struct{}

// WithCaller stores a Caller in the context.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext extracts the Caller from the context.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
