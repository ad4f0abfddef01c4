package middleware

import (
	"context"

	"github.com/ngjiaxun/platter/internal/domain"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the authenticated actor from the context.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	v := ctx.Value(actorContextKey)
	if v == nil {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
