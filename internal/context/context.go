package ctx

import (
	"context"
)

type contextKey string

const (
	ActorContextKey contextKey = "actor"
)

// WithActor stores the authenticated acting actor ID.
func WithActor(parent context.Context, actorID int64) context.Context {
	return context.WithValue(parent, ActorContextKey, actorID)
}

func GetActorFromContext(ctx context.Context) (int64, bool) {
	actorID, ok := ctx.Value(ActorContextKey).(int64)
	return actorID, ok
}
