// Package requestid carries the per-request correlation id through a context.
package requestid

import "context"

type key struct{}

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key{}, id)
}

// From returns the id stored in ctx, or "" when none was set.
func From(ctx context.Context) string {
	if rid, ok := ctx.Value(key{}).(string); ok {
		return rid
	}
	return ""
}
