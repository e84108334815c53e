package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

type PropertyRepo struct {
	pool *pgxpool.Pool
}

func NewPropertyRepo(pool *pgxpool.Pool) *PropertyRepo {
	return &PropertyRepo{pool: pool}
}

// UpsertSeen writes today's observation of a listing. The insert is keyed by
// the stable property id, so re-running a cycle after a crash writes the
// same rows again without duplication. A previously removed listing that
// reappears is revived (removed_at cleared).
func (r *PropertyRepo) UpsertSeen(ctx context.Context, tx pgx.Tx, p model.Property) error {
	if p.ID == "" {
		return fmt.Errorf("property id is required")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if p.FirstSeenAt.IsZero() || p.LastSeenAt.IsZero() {
		return fmt.Errorf("property %s has no seen timestamps", p.ID)
	}

	_, err := tx.Exec(ctx, `
INSERT INTO properties (
	id, source, source_id, address, city, area, latitude, longitude,
	price, rooms, sqm, description, features, images, url, status,
	raw_key, scraped_at, first_seen_at, last_seen_at, removed_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8,
	$9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, NULL
)
ON CONFLICT (id) DO UPDATE SET
	address = EXCLUDED.address,
	city = EXCLUDED.city,
	area = EXCLUDED.area,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	price = EXCLUDED.price,
	rooms = EXCLUDED.rooms,
	sqm = EXCLUDED.sqm,
	description = EXCLUDED.description,
	features = EXCLUDED.features,
	images = EXCLUDED.images,
	url = EXCLUDED.url,
	status = EXCLUDED.status,
	raw_key = EXCLUDED.raw_key,
	scraped_at = EXCLUDED.scraped_at,
	last_seen_at = EXCLUDED.last_seen_at,
	removed_at = NULL
`,
		p.ID, p.Source, p.SourceID, p.Address, p.Location.City, p.Location.Area,
		p.Location.Latitude, p.Location.Longitude,
		p.Price, p.Rooms, p.SquareM, p.Description, p.Features, p.Images, p.URL, p.Status,
		p.RawKey, p.ScrapedAt, p.FirstSeenAt, p.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("upsert property %s: %w", p.ID, err)
	}

	return nil
}

// MarkRemoved stamps listings that dropped out of the source feed. Rows are
// retained, never deleted, so swipes and favorites referencing them stay
// valid.
func (r *PropertyRepo) MarkRemoved(ctx context.Context, tx pgx.Tx, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
UPDATE properties
SET removed_at = $2
WHERE id = ANY($1) AND removed_at IS NULL
`, ids, at)
	if err != nil {
		return 0, fmt.Errorf("mark properties removed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListActive returns the live listing set, i.e. the prior day's snapshot as
// seen by the diff engine.
func (r *PropertyRepo) ListActive(ctx context.Context) ([]model.Property, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+propertyColumns+`
FROM properties
WHERE removed_at IS NULL
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list active properties: %w", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

func (r *PropertyRepo) Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `SELECT 1 FROM properties WHERE id = $1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check property %s: %w", id, err)
	}

	return true, nil
}

const propertyColumns = `
	id, source, source_id, address, city, area, latitude, longitude,
	price, rooms, sqm, description, features, images, url, status,
	raw_key, scraped_at, first_seen_at, last_seen_at, removed_at
`

func scanProperties(rows pgx.Rows) ([]model.Property, error) {
	var items []model.Property
	for rows.Next() {
		var p model.Property
		var source, status string
		if err := rows.Scan(
			&p.ID, &source, &p.SourceID, &p.Address, &p.Location.City, &p.Location.Area,
			&p.Location.Latitude, &p.Location.Longitude,
			&p.Price, &p.Rooms, &p.SquareM, &p.Description, &p.Features, &p.Images, &p.URL, &status,
			&p.RawKey, &p.ScrapedAt, &p.FirstSeenAt, &p.LastSeenAt, &p.RemovedAt,
		); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		p.Source = enums.Source(source)
		p.Status = enums.ListingStatus(status)
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate properties: %w", rows.Err())
	}

	return items, nil
}
