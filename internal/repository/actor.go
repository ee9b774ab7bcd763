package repository

import (
	"context"

	"freight/internal/domain"
)

// ActorDirectory resolves the role an actor holds in the marketplace.
type ActorDirectory interface {
	// ResolveRole returns ErrNotFound for unknown actors.
	ResolveRole(ctx context.Context, actorID string) (domain.Role, error)
}
