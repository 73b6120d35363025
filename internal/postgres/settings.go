package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshplate/storefront/internal/domain/settings"
)

var _ settings.Source = (*SettingsRepository)(nil)

// SettingsRepository loads raw configuration rows from PostgreSQL. Rows are
// re-read per request; the pricing path owns no cache.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetAll returns every configuration row with its raw JSON payload.
func (r *SettingsRepository) GetAll(ctx context.Context) ([]settings.Row, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, errors.Wrap(err, "loading settings")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (settings.Row, error) {
		var s settings.Row
		err := row.Scan(&s.Key, &s.Value)
		return s, err
	})
}
