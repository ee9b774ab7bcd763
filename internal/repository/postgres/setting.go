package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/repository"
)

// SettingRepository reads key/value rows from the settings table.
type SettingRepository struct {
	q Querier
}

// NewSettingRepository creates a new PostgreSQL setting repository.
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{q: db}
}

var _ repository.SettingRepository = (*SettingRepository)(nil)

func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	return value, nil
}
