// Package ctxutil provides context helpers shared by the workhorse packages.
package ctxutil

import "context"

// Canceled returns the context error once ctx is done and nil otherwise.
// Managers call it at the top of every operation so a canceled request
// never starts mutating state.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// Detached returns a context that keeps ctx's values but is never canceled.
// Used for cleanup that must finish after the caller gave up, such as
// killing a process group.
func Detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
