package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/domain"
	"freight/internal/repository"
)

// ActorRepository resolves actor roles from the actors table.
type ActorRepository struct {
	q Querier
}

// NewActorRepository creates a new PostgreSQL actor repository.
func NewActorRepository(db *sql.DB) *ActorRepository {
	return &ActorRepository{q: db}
}

var _ repository.ActorDirectory = (*ActorRepository)(nil)

// ResolveRole returns the role registered for an actor.
func (r *ActorRepository) ResolveRole(ctx context.Context, actorID string) (domain.Role, error) {
	var role domain.Role
	err := r.q.QueryRowContext(ctx, `SELECT role FROM actors WHERE id = $1`, actorID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	return role, nil
}
