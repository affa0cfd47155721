package common

import "context"

type contextKey string

const actorKey contextKey = "actor"

// SystemActor is recorded on timeline events produced outside a user session,
// e.g. by background jobs.
const SystemActor = "system"

// WithActor attaches the display name of the session user performing the
// current command. The ledger trusts whatever identity the caller resolved.
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorKey, name)
}

// ActorFrom returns the session actor, or SystemActor if none was attached.
func ActorFrom(ctx context.Context) string {
	if name, ok := ctx.Value(actorKey).(string); ok && name != "" {
		return name
	}
	return SystemActor
}
