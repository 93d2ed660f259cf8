package ports

import "context"

type scopeKey struct{}

// WithScope tags ctx with the client scope whose durable token outgoing
// backend calls should carry.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the client scope carried by ctx, or "".
func ScopeFrom(ctx context.Context) string {
	s, _ := ctx.Value(scopeKey{}).(string)
	return s
}
