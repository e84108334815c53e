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

var ErrRunNotFound = errors.New("daily run not found")

type RunRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Start claims a run date. The unique run_date key makes the daily cycle
// single-flight: the first caller gets started=true, any other caller for
// the same date gets the already-existing run back.
func (r *RunRepo) Start(ctx context.Context, run model.DailyRun) (model.DailyRun, bool, error) {
	if r.pool == nil {
		return model.DailyRun{}, false, fmt.Errorf("postgres pool is nil")
	}
	if run.ID == "" || run.RunDate == "" {
		return model.DailyRun{}, false, fmt.Errorf("run id and date are required")
	}

	tag, err := r.pool.Exec(ctx, `
INSERT INTO daily_runs (id, run_date, status, started_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (run_date) DO NOTHING
`, run.ID, run.RunDate, enums.RunStatusRunning, run.StartedAt)
	if err != nil {
		return model.DailyRun{}, false, fmt.Errorf("start run %s: %w", run.RunDate, err)
	}

	if tag.RowsAffected() > 0 {
		run.Status = enums.RunStatusRunning
		return run, true, nil
	}

	existing, err := r.GetByDate(ctx, run.RunDate)
	if err != nil {
		return model.DailyRun{}, false, err
	}

	return existing, false, nil
}

// Finish seals the ledger entry. After this the record is read-only.
func (r *RunRepo) Finish(ctx context.Context, runID string, counts model.RunCounts, newPropertyIDs []string, status enums.RunStatus, at time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if newPropertyIDs == nil {
		newPropertyIDs = []string{}
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE daily_runs
SET
	status = $2,
	finished_at = $3,
	scraped = $4, invalid = $5,
	new = $6, updated = $7, removed = $8, unchanged = $9,
	matched = $10, failed_batches = $11, source_errors = $12,
	new_property_ids = $13
WHERE id = $1 AND finished_at IS NULL
`, runID, status, at,
		counts.Scraped, counts.Invalid,
		counts.New, counts.Updated, counts.Removed, counts.Unchanged,
		counts.Matched, counts.FailedBatches, counts.SourceErrors,
		newPropertyIDs)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}

	return nil
}

func (r *RunRepo) GetByDate(ctx context.Context, runDate string) (model.DailyRun, error) {
	if r.pool == nil {
		return model.DailyRun{}, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, runSelect+` WHERE run_date = $1`, runDate)
	if err != nil {
		return model.DailyRun{}, fmt.Errorf("get run %s: %w", runDate, err)
	}
	defer rows.Close()

	items, err := scanRuns(rows)
	if err != nil {
		return model.DailyRun{}, err
	}
	if len(items) == 0 {
		return model.DailyRun{}, ErrRunNotFound
	}

	return items[0], nil
}

func (r *RunRepo) List(ctx context.Context, limit int) ([]model.DailyRun, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, runSelect+` ORDER BY run_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

const runSelect = `
SELECT
	id, run_date, status,
	scraped, invalid, new, updated, removed, unchanged,
	matched, failed_batches, source_errors,
	new_property_ids, started_at, finished_at
FROM daily_runs
`

func scanRuns(rows pgx.Rows) ([]model.DailyRun, error) {
	var items []model.DailyRun
	for rows.Next() {
		var item model.DailyRun
		var status string
		if err := rows.Scan(
			&item.ID, &item.RunDate, &status,
			&item.Counts.Scraped, &item.Counts.Invalid,
			&item.Counts.New, &item.Counts.Updated, &item.Counts.Removed, &item.Counts.Unchanged,
			&item.Counts.Matched, &item.Counts.FailedBatches, &item.Counts.SourceErrors,
			&item.NewPropertyIDs, &item.StartedAt, &item.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		item.Status = enums.RunStatus(status)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate runs: %w", rows.Err())
	}

	return items, nil
}
