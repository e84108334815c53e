package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

var ErrPreferenceNotFound = errors.New("shared preference not found")

// PreferenceRepo owns the single live preference record. The singleton
// column carries a unique constraint, so a second live row cannot appear.
type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

// Ensure seeds the singleton on first boot; later calls are no-ops.
func (r *PreferenceRepo) Ensure(ctx context.Context, defaultQuery string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO shared_preference (id, singleton, query, version, created_at, updated_at)
VALUES ($1, TRUE, $2, 1, NOW(), NOW())
ON CONFLICT (singleton) DO NOTHING
`, uuid.NewString(), defaultQuery)
	if err != nil {
		return fmt.Errorf("seed shared preference: %w", err)
	}

	return nil
}

func (r *PreferenceRepo) Get(ctx context.Context) (model.SharedPreference, error) {
	if r.pool == nil {
		return model.SharedPreference{}, fmt.Errorf("postgres pool is nil")
	}

	var pref model.SharedPreference
	err := r.pool.QueryRow(ctx, `
SELECT id, query, version, created_at, updated_at
FROM shared_preference
WHERE singleton
`).Scan(&pref.ID, &pref.Query, &pref.Version, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SharedPreference{}, ErrPreferenceNotFound
		}
		return model.SharedPreference{}, fmt.Errorf("get shared preference: %w", err)
	}

	return pref, nil
}

// UpdateQuery replaces the criteria text and bumps the version in one
// statement. Callers should skip the call when the text is unchanged, so a
// version only ever points at distinct criteria.
func (r *PreferenceRepo) UpdateQuery(ctx context.Context, query string) (model.SharedPreference, error) {
	if r.pool == nil {
		return model.SharedPreference{}, fmt.Errorf("postgres pool is nil")
	}

	var pref model.SharedPreference
	err := r.pool.QueryRow(ctx, `
UPDATE shared_preference
SET query = $1, version = version + 1, updated_at = NOW()
WHERE singleton
RETURNING id, query, version, created_at, updated_at
`, query).Scan(&pref.ID, &pref.Query, &pref.Version, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SharedPreference{}, ErrPreferenceNotFound
		}
		return model.SharedPreference{}, fmt.Errorf("update shared preference: %w", err)
	}

	return pref, nil
}
