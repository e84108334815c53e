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

type FavoriteRepo struct {
	pool *pgxpool.Pool
}

// FavoriteRecord joins a favorite with its property for dashboard listing.
type FavoriteRecord struct {
	Favorite model.FavoriteProperty
	Property model.Property
}

func NewFavoriteRepo(pool *pgxpool.Pool) *FavoriteRepo {
	return &FavoriteRepo{pool: pool}
}

// CreateIfAbsent inserts the favorite row for the consensus transition.
// ON CONFLICT DO NOTHING makes the transition fire exactly once even when
// both swipes race through their transactions.
func (r *FavoriteRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, propertyID string, at time.Time) (bool, error) {
	if propertyID == "" {
		return false, fmt.Errorf("property id is required")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var id string
	err := tx.QueryRow(ctx, `
INSERT INTO favorite_properties (property_id, notes, status, added_at, updated_at)
VALUES ($1, '', $2, $3, $3)
ON CONFLICT (property_id) DO NOTHING
RETURNING property_id
`, propertyID, enums.FavoriteStatusActive, at).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("create favorite %s: %w", propertyID, err)
	}

	return true, nil
}

func (r *FavoriteRepo) Exists(ctx context.Context, tx pgx.Tx, propertyID string) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `SELECT 1 FROM favorite_properties WHERE property_id = $1`, propertyID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check favorite %s: %w", propertyID, err)
	}

	return true, nil
}

func (r *FavoriteRepo) List(ctx context.Context) ([]FavoriteRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	f.property_id, f.notes, f.status, f.added_at, f.updated_at,
	p.source, p.source_id, p.address, p.city, p.area, p.price, p.rooms, p.sqm,
	p.url, p.status, p.removed_at
FROM favorite_properties f
JOIN properties p ON p.id = f.property_id
ORDER BY f.added_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var items []FavoriteRecord
	for rows.Next() {
		var item FavoriteRecord
		var favStatus, source, listingStatus string
		if err := rows.Scan(
			&item.Favorite.PropertyID, &item.Favorite.Notes, &favStatus,
			&item.Favorite.AddedAt, &item.Favorite.UpdatedAt,
			&source, &item.Property.SourceID, &item.Property.Address,
			&item.Property.Location.City, &item.Property.Location.Area,
			&item.Property.Price, &item.Property.Rooms, &item.Property.SquareM,
			&item.Property.URL, &listingStatus, &item.Property.RemovedAt,
		); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		item.Favorite.Status = enums.FavoriteStatus(favStatus)
		item.Property.ID = item.Favorite.PropertyID
		item.Property.Source = enums.Source(source)
		item.Property.Status = enums.ListingStatus(listingStatus)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate favorites: %w", rows.Err())
	}

	return items, nil
}

// UpdateNotes edits the mutable part of a favorite. AddedAt never changes.
func (r *FavoriteRepo) UpdateNotes(ctx context.Context, propertyID, notes string, status enums.FavoriteStatus, at time.Time) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE favorite_properties
SET notes = $2, status = $3, updated_at = $4
WHERE property_id = $1
`, propertyID, notes, status, at)
	if err != nil {
		return false, fmt.Errorf("update favorite %s: %w", propertyID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete is the explicit remove-from-favorites action. Swipes stay intact;
// the pair may re-reach consensus later and re-create the favorite.
func (r *FavoriteRepo) Delete(ctx context.Context, propertyID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM favorite_properties
WHERE property_id = $1
`, propertyID)
	if err != nil {
		return false, fmt.Errorf("delete favorite %s: %w", propertyID, err)
	}

	return tag.RowsAffected() > 0, nil
}
