package api

import "context"

// privilegedContextKey is the context key for the privileged-access flag.
type privilegedContextKey struct{}

// WithPrivileged returns a new context with the privileged flag attached.
func WithPrivileged(ctx context.Context, privileged bool) context.Context {
	return context.WithValue(ctx, privilegedContextKey{}, privileged)
}

// PrivilegedFromContext reports whether the request was authorized with the
// admin key. Returns false if not present.
func PrivilegedFromContext(ctx context.Context) bool {
	privileged, ok := ctx.Value(privilegedContextKey{}).(bool)
	return ok && privileged
}
