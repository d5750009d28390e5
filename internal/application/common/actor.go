package common

import (
	"context"

	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// WithActor attaches the authenticated user to the context
func WithActor(ctx context.Context, actor shared.ActorID) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated user, or the system actor when none is attached
func ActorFromContext(ctx context.Context) shared.ActorID {
	if actor, ok := ctx.Value(actorKey).(shared.ActorID); ok && !actor.IsZero() {
		return actor
	}
	return shared.SystemActor
}
