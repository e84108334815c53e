// Package dailyrun drives the once-a-day cycle: scrape the sources, diff
// against the stored snapshot, persist the changes, run AI matching on the
// evaluable listings and close the run ledger entry.
package dailyrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
	"github.com/hamiltoon/housing-scout/internal/domain/rules"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
	"github.com/hamiltoon/housing-scout/internal/services/ingest"
	"github.com/hamiltoon/housing-scout/internal/services/matcher"
	"github.com/hamiltoon/housing-scout/internal/services/snapshot"
)

var (
	ErrDependenciesNil = errors.New("daily run dependencies are not configured")
	ErrNothingScraped  = errors.New("all sources failed, nothing scraped")
	ErrSnapshotLocked  = errors.New("another cycle holds the snapshot for this date")
)

type Ingestor interface {
	Collect(ctx context.Context, date string) (ingest.Result, error)
}

type PropertyStore interface {
	ListActive(ctx context.Context) ([]model.Property, error)
	UpsertSeen(ctx context.Context, tx pgx.Tx, p model.Property) error
	MarkRemoved(ctx context.Context, tx pgx.Tx, ids []string, at time.Time) (int64, error)
}

type SnapshotStore interface {
	RecordClassifications(ctx context.Context, runDate, runID string, entries []pgrepo.ClassificationRecord) error
}

type RunStore interface {
	Start(ctx context.Context, run model.DailyRun) (model.DailyRun, bool, error)
	Finish(ctx context.Context, runID string, counts model.RunCounts, newPropertyIDs []string, status enums.RunStatus, at time.Time) error
}

type PreferenceProvider interface {
	Get(ctx context.Context) (model.SharedPreference, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, pref model.SharedPreference, listings []model.Property, runID string) (matcher.Report, error)
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	Ingestor      Ingestor
	PropertyStore PropertyStore
	SnapshotStore SnapshotStore
	RunStore      RunStore
	Preferences   PreferenceProvider
	Evaluator     Evaluator
}

type Job struct {
	pool          *pgxpool.Pool
	ingestor      Ingestor
	propertyStore PropertyStore
	snapshotStore SnapshotStore
	runStore      RunStore
	preferences   PreferenceProvider
	evaluator     Evaluator
	location      *time.Location
	logger        *zap.Logger
	now           func() time.Time
	runTx         func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
	tryLock       func(ctx context.Context, tx pgx.Tx, key string) (bool, error)
}

func New(deps Dependencies, location *time.Location, logger *zap.Logger) *Job {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		pool:          deps.Pool,
		ingestor:      deps.Ingestor,
		propertyStore: deps.PropertyStore,
		snapshotStore: deps.SnapshotStore,
		runStore:      deps.RunStore,
		preferences:   deps.Preferences,
		evaluator:     deps.Evaluator,
		location:      location,
		logger:        logger,
		now:           time.Now,
		runTx:         pgrepo.WithTx,
		tryLock:       pgrepo.TryLockKey,
	}
}

// Run executes the cycle for today in the household timezone.
func (j *Job) Run(ctx context.Context) (model.DailyRun, error) {
	return j.RunForDate(ctx, rules.DayKey(j.now().UTC(), j.location))
}

// RunForDate executes the cycle for one calendar day. The run_date unique
// key makes the cycle single-flight: a second invocation for the same day
// returns the existing ledger entry untouched. The snapshot write also
// takes a per-date advisory lock, so a manual replay racing a live cycle
// fails instead of interleaving writes.
func (j *Job) RunForDate(ctx context.Context, date string) (model.DailyRun, error) {
	if j.ingestor == nil || j.propertyStore == nil || j.snapshotStore == nil || j.runStore == nil || j.preferences == nil || j.evaluator == nil {
		return model.DailyRun{}, ErrDependenciesNil
	}

	startedAt := j.now().UTC()
	run, started, err := j.runStore.Start(ctx, model.DailyRun{
		ID:        uuid.NewString(),
		RunDate:   date,
		Status:    enums.RunStatusRunning,
		StartedAt: startedAt,
	})
	if err != nil {
		return model.DailyRun{}, fmt.Errorf("start daily run: %w", err)
	}
	if !started {
		j.logger.Info("daily run already recorded, skipping",
			zap.String("run_date", date),
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
		)
		return run, nil
	}

	j.logger.Info("daily run started", zap.String("run_date", date), zap.String("run_id", run.ID))

	counts, newIDs, err := j.execute(ctx, run)
	finishedAt := j.now().UTC()
	status := enums.RunStatusCompleted
	if err != nil {
		status = enums.RunStatusFailed
		j.logger.Error("daily run failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	if finishErr := j.runStore.Finish(ctx, run.ID, counts, newIDs, status, finishedAt); finishErr != nil {
		j.logger.Error("close daily run ledger", zap.String("run_id", run.ID), zap.Error(finishErr))
		if err == nil {
			err = finishErr
		}
	}
	if err != nil {
		return model.DailyRun{}, err
	}

	run.Status = status
	run.Counts = counts
	run.NewPropertyIDs = newIDs
	run.FinishedAt = &finishedAt

	j.logger.Info("daily run completed",
		zap.String("run_id", run.ID),
		zap.Int("scraped", counts.Scraped),
		zap.Int("new", counts.New),
		zap.Int("updated", counts.Updated),
		zap.Int("removed", counts.Removed),
		zap.Int("matched", counts.Matched),
		zap.Int("failed_batches", counts.FailedBatches),
	)
	return run, nil
}

func (j *Job) execute(ctx context.Context, run model.DailyRun) (model.RunCounts, []string, error) {
	var counts model.RunCounts

	collected, err := j.ingestor.Collect(ctx, run.RunDate)
	if err != nil {
		return counts, nil, fmt.Errorf("collect listings: %w", err)
	}
	counts.Scraped = collected.Scraped
	counts.Invalid = collected.Invalid
	counts.SourceErrors = collected.SourceErrors

	// An empty scrape with source errors is a failed day, not a mass
	// removal of every live property.
	if len(collected.Properties) == 0 && collected.SourceErrors > 0 {
		return counts, nil, ErrNothingScraped
	}

	previous, err := j.propertyStore.ListActive(ctx)
	if err != nil {
		return counts, nil, fmt.Errorf("load stored snapshot: %w", err)
	}

	diff := snapshot.Diff(previous, collected.Properties)
	counts.New = len(diff.New)
	counts.Updated = len(diff.Updated)
	counts.Unchanged = len(diff.Unchanged)
	counts.Removed = len(diff.Removed)

	seenAt := j.now().UTC()
	for i := range collected.Properties {
		// first_seen_at only lands on insert, so stamping both is safe
		// for listings already on record.
		collected.Properties[i].FirstSeenAt = seenAt
		collected.Properties[i].LastSeenAt = seenAt
	}

	if err := j.runTx(ctx, j.pool, func(txCtx context.Context, tx pgx.Tx) error {
		acquired, err := j.tryLock(txCtx, tx, "dailyrun:"+run.RunDate)
		if err != nil {
			return err
		}
		if !acquired {
			return ErrSnapshotLocked
		}
		for _, p := range collected.Properties {
			if err := j.propertyStore.UpsertSeen(txCtx, tx, p); err != nil {
				return err
			}
		}
		if len(diff.Removed) > 0 {
			removedIDs := make([]string, 0, len(diff.Removed))
			for _, p := range diff.Removed {
				removedIDs = append(removedIDs, p.ID)
			}
			if _, err := j.propertyStore.MarkRemoved(txCtx, tx, removedIDs, seenAt); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return counts, nil, fmt.Errorf("apply snapshot: %w", err)
	}

	if err := j.snapshotStore.RecordClassifications(ctx, run.RunDate, run.ID, classify(diff)); err != nil {
		return counts, nil, fmt.Errorf("record classifications: %w", err)
	}

	pref, err := j.preferences.Get(ctx)
	if err != nil {
		return counts, nil, fmt.Errorf("load preference: %w", err)
	}

	// All live listings go to the evaluator; the (property, version)
	// idempotency key reduces that to the unscored ones, and covers the
	// full re-evaluation after a preference version bump.
	report, err := j.evaluator.Evaluate(ctx, pref, collected.Properties, run.ID)
	counts.Matched = report.Persisted
	counts.FailedBatches = report.FailedBatches
	if err != nil {
		return counts, diff.NewIDs(), fmt.Errorf("evaluate matches: %w", err)
	}

	return counts, diff.NewIDs(), nil
}

func classify(diff snapshot.Result) []pgrepo.ClassificationRecord {
	entries := make([]pgrepo.ClassificationRecord, 0,
		len(diff.New)+len(diff.Updated)+len(diff.Unchanged)+len(diff.Removed))

	for _, p := range diff.New {
		entries = append(entries, pgrepo.ClassificationRecord{PropertyID: p.ID, Classification: snapshot.ClassificationNew})
	}
	for _, p := range diff.Updated {
		entries = append(entries, pgrepo.ClassificationRecord{
			PropertyID:     p.ID,
			Classification: snapshot.ClassificationUpdated,
			Changes:        diff.Changes[p.ID],
		})
	}
	for _, p := range diff.Unchanged {
		entries = append(entries, pgrepo.ClassificationRecord{PropertyID: p.ID, Classification: snapshot.ClassificationUnchanged})
	}
	for _, p := range diff.Removed {
		entries = append(entries, pgrepo.ClassificationRecord{PropertyID: p.ID, Classification: snapshot.ClassificationRemoved})
	}

	return entries
}
