package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

// SnapshotRepo keeps the per-date diff audit trail: how each listing was
// classified on a given run and, for updates, the field-level change list.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

type ClassificationRecord struct {
	PropertyID     string
	Classification string
	Changes        []model.FieldChange
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// RecordClassifications appends one run's diff outcome. Keyed by
// (run_date, property_id), so replaying a crashed run does not duplicate
// audit rows.
func (r *SnapshotRepo) RecordClassifications(ctx context.Context, runDate, runID string, entries []ClassificationRecord) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if runDate == "" || runID == "" {
		return fmt.Errorf("run date and run id are required")
	}

	for _, entry := range entries {
		changes, err := json.Marshal(entry.Changes)
		if err != nil {
			return fmt.Errorf("marshal field changes for %s: %w", entry.PropertyID, err)
		}

		_, err = r.pool.Exec(ctx, `
INSERT INTO snapshot_classifications (run_date, run_id, property_id, classification, changes, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (run_date, property_id) DO NOTHING
`, runDate, runID, entry.PropertyID, entry.Classification, changes)
		if err != nil {
			return fmt.Errorf("record classification for %s: %w", entry.PropertyID, err)
		}
	}

	return nil
}

func (r *SnapshotRepo) ListByDate(ctx context.Context, runDate string) ([]ClassificationRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT property_id, classification, changes
FROM snapshot_classifications
WHERE run_date = $1
ORDER BY property_id
`, runDate)
	if err != nil {
		return nil, fmt.Errorf("list classifications for %s: %w", runDate, err)
	}
	defer rows.Close()

	var items []ClassificationRecord
	for rows.Next() {
		var item ClassificationRecord
		var changes []byte
		if err := rows.Scan(&item.PropertyID, &item.Classification, &changes); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &item.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal field changes: %w", err)
			}
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate classifications: %w", rows.Err())
	}

	return items, nil
}
