package dailyrun

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
	"github.com/hamiltoon/housing-scout/internal/services/ingest"
	"github.com/hamiltoon/housing-scout/internal/services/matcher"
)

type ingestorStub struct {
	results map[string]ingest.Result
	err     error
}

func (s *ingestorStub) Collect(_ context.Context, date string) (ingest.Result, error) {
	if s.err != nil {
		return ingest.Result{}, s.err
	}
	return s.results[date], nil
}

type propertyStoreStub struct {
	active  map[string]model.Property
	removed map[string]bool
}

func newPropertyStoreStub() *propertyStoreStub {
	return &propertyStoreStub{active: map[string]model.Property{}, removed: map[string]bool{}}
}

func (s *propertyStoreStub) ListActive(context.Context) ([]model.Property, error) {
	props := make([]model.Property, 0, len(s.active))
	for _, p := range s.active {
		props = append(props, p)
	}
	return props, nil
}

func (s *propertyStoreStub) UpsertSeen(_ context.Context, _ pgx.Tx, p model.Property) error {
	s.active[p.ID] = p
	delete(s.removed, p.ID)
	return nil
}

func (s *propertyStoreStub) MarkRemoved(_ context.Context, _ pgx.Tx, ids []string, _ time.Time) (int64, error) {
	for _, id := range ids {
		delete(s.active, id)
		s.removed[id] = true
	}
	return int64(len(ids)), nil
}

type snapshotStoreStub struct {
	byDate map[string][]pgrepo.ClassificationRecord
}

func (s *snapshotStoreStub) RecordClassifications(_ context.Context, runDate, _ string, entries []pgrepo.ClassificationRecord) error {
	if s.byDate == nil {
		s.byDate = map[string][]pgrepo.ClassificationRecord{}
	}
	s.byDate[runDate] = entries
	return nil
}

type runStoreStub struct {
	byDate   map[string]model.DailyRun
	finished map[string]enums.RunStatus
}

func newRunStoreStub() *runStoreStub {
	return &runStoreStub{byDate: map[string]model.DailyRun{}, finished: map[string]enums.RunStatus{}}
}

func (s *runStoreStub) Start(_ context.Context, run model.DailyRun) (model.DailyRun, bool, error) {
	if existing, ok := s.byDate[run.RunDate]; ok {
		return existing, false, nil
	}
	s.byDate[run.RunDate] = run
	return run, true, nil
}

func (s *runStoreStub) Finish(_ context.Context, runID string, counts model.RunCounts, newIDs []string, status enums.RunStatus, at time.Time) error {
	s.finished[runID] = status
	for date, run := range s.byDate {
		if run.ID == runID {
			run.Counts = counts
			run.NewPropertyIDs = newIDs
			run.Status = status
			run.FinishedAt = &at
			s.byDate[date] = run
		}
	}
	return nil
}

type prefStub struct{ version int }

func (s *prefStub) Get(context.Context) (model.SharedPreference, error) {
	return model.SharedPreference{ID: "pref-1", Query: "2 rooms", Version: s.version}, nil
}

type evaluatorStub struct {
	calls    int
	listings [][]string
	report   matcher.Report
	err      error
}

func (s *evaluatorStub) Evaluate(_ context.Context, _ model.SharedPreference, listings []model.Property, _ string) (matcher.Report, error) {
	s.calls++
	ids := make([]string, 0, len(listings))
	for _, p := range listings {
		ids = append(ids, p.ID)
	}
	s.listings = append(s.listings, ids)
	if s.err != nil {
		return s.report, s.err
	}
	report := s.report
	if report.Persisted == 0 {
		report.Persisted = len(listings)
	}
	return report, nil
}

func prop(id string, price int64) model.Property {
	return model.Property{
		ID:       id,
		Source:   enums.SourceBooli,
		SourceID: id,
		Address:  "Hornsgatan 1",
		Price:    price,
	}
}

type fixture struct {
	job        *Job
	ingestor   *ingestorStub
	properties *propertyStoreStub
	snapshots  *snapshotStoreStub
	runs       *runStoreStub
	evaluator  *evaluatorStub
}

func newFixture(ingestor *ingestorStub) *fixture {
	f := &fixture{
		ingestor:   ingestor,
		properties: newPropertyStoreStub(),
		snapshots:  &snapshotStoreStub{},
		runs:       newRunStoreStub(),
		evaluator:  &evaluatorStub{},
	}

	f.job = New(Dependencies{
		Ingestor:      f.ingestor,
		PropertyStore: f.properties,
		SnapshotStore: f.snapshots,
		RunStore:      f.runs,
		Preferences:   &prefStub{version: 1},
		Evaluator:     f.evaluator,
	}, time.UTC, nil)

	f.job.now = func() time.Time { return time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC) }
	f.job.runTx = func(ctx context.Context, _ *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	f.job.tryLock = func(context.Context, pgx.Tx, string) (bool, error) {
		return true, nil
	}
	return f
}

func TestRunFirstDayAllNew(t *testing.T) {
	f := newFixture(&ingestorStub{results: map[string]ingest.Result{
		"2026-03-14": {
			Properties: []model.Property{prop("booli:1", 100), prop("booli:2", 200)},
			Scraped:    2,
		},
	}})

	run, err := f.job.RunForDate(context.Background(), "2026-03-14")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if run.Status != enums.RunStatusCompleted {
		t.Fatalf("want completed, got %s", run.Status)
	}
	if run.Counts.New != 2 || run.Counts.Removed != 0 || run.Counts.Matched != 2 {
		t.Fatalf("unexpected counts: %+v", run.Counts)
	}
	if len(run.NewPropertyIDs) != 2 {
		t.Fatalf("new ids missing: %v", run.NewPropertyIDs)
	}
	if len(f.properties.active) != 2 {
		t.Fatalf("properties not persisted: %v", f.properties.active)
	}
	if f.evaluator.calls != 1 {
		t.Fatalf("evaluator calls = %d", f.evaluator.calls)
	}
}

func TestRunSecondDayDiffAndRemoval(t *testing.T) {
	f := newFixture(&ingestorStub{results: map[string]ingest.Result{
		"2026-03-14": {
			Properties: []model.Property{prop("booli:1", 100), prop("booli:2", 200)},
			Scraped:    2,
		},
		"2026-03-15": {
			Properties: []model.Property{prop("booli:1", 100), prop("booli:2", 250), prop("booli:3", 300)},
			Scraped:    3,
		},
	}})
	ctx := context.Background()

	if _, err := f.job.RunForDate(ctx, "2026-03-14"); err != nil {
		t.Fatalf("day 1: %v", err)
	}

	run, err := f.job.RunForDate(ctx, "2026-03-15")
	if err != nil {
		t.Fatalf("day 2: %v", err)
	}

	if run.Counts.New != 1 || run.Counts.Updated != 1 || run.Counts.Unchanged != 1 {
		t.Fatalf("unexpected day-2 counts: %+v", run.Counts)
	}

	classifications := map[string]string{}
	for _, entry := range f.snapshots.byDate["2026-03-15"] {
		classifications[entry.PropertyID] = entry.Classification
	}
	if classifications["booli:1"] != "unchanged" || classifications["booli:2"] != "updated" || classifications["booli:3"] != "new" {
		t.Fatalf("unexpected classifications: %v", classifications)
	}
}

func TestRunMarksDisappearedRemoved(t *testing.T) {
	f := newFixture(&ingestorStub{results: map[string]ingest.Result{
		"2026-03-14": {
			Properties: []model.Property{prop("booli:1", 100), prop("booli:2", 200)},
			Scraped:    2,
		},
		"2026-03-15": {
			Properties: []model.Property{prop("booli:1", 100)},
			Scraped:    1,
		},
	}})
	ctx := context.Background()

	if _, err := f.job.RunForDate(ctx, "2026-03-14"); err != nil {
		t.Fatalf("day 1: %v", err)
	}
	run, err := f.job.RunForDate(ctx, "2026-03-15")
	if err != nil {
		t.Fatalf("day 2: %v", err)
	}

	if run.Counts.Removed != 1 {
		t.Fatalf("unexpected counts: %+v", run.Counts)
	}
	if !f.properties.removed["booli:2"] {
		t.Fatalf("booli:2 not marked removed")
	}
}

func TestRunStampsSeenTimestamps(t *testing.T) {
	f := newFixture(&ingestorStub{results: map[string]ingest.Result{
		"2026-03-14": {
			Properties: []model.Property{prop("booli:1", 100)},
			Scraped:    1,
		},
	}})

	if _, err := f.job.RunForDate(context.Background(), "2026-03-14"); err != nil {
		t.Fatalf("run: %v", err)
	}

	stored, ok := f.properties.active["booli:1"]
	if !ok {
		t.Fatalf("property not persisted")
	}
	clock := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	if !stored.FirstSeenAt.Equal(clock) || !stored.LastSeenAt.Equal(clock) {
		t.Fatalf("seen timestamps not stamped: first=%v last=%v", stored.FirstSeenAt, stored.LastSeenAt)
	}
}

func TestRunAbortsWhenSnapshotLocked(t *testing.T) {
	f := newFixture(&ingestorStub{results: map[string]ingest.Result{
		"2026-03-14": {
			Properties: []model.Property{prop("booli:1", 100)},
			Scraped:    1,
		},
	}})
	f.job.tryLock = func(context.Context, pgx.Tx, string) (bool, error) {
		return false, nil
	}

	_, err := f.job.RunForDate(context.Background(), "2026-03-14")
	if !errors.Is(err, ErrSnapshotLocked) {
		t.Fatalf("want ErrSnapshotLocked, got %v", err)
	}
	if len(f.properties.active) != 0 {
		t.Fatalf("locked snapshot must not be written: %v", f.properties.active)
	}

	run := f.runs.byDate["2026-03-14"]
	if f.runs.finished[run.ID] != enums.RunStatusFailed {
		t.Fatalf("run not marked failed: %v", f.runs.finished)
	}
}

func TestRunSingleFlightPerDate(t *testing.T) {
	f := newFixture(&ingestorStub{results: map[string]ingest.Result{
		"2026-03-14": {
			Properties: []model.Property{prop("booli:1", 100)},
			Scraped:    1,
		},
	}})
	ctx := context.Background()

	first, err := f.job.RunForDate(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := f.job.RunForDate(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("second invocation must return the existing run")
	}
	if f.evaluator.calls != 1 {
		t.Fatalf("second invocation must not re-evaluate, calls=%d", f.evaluator.calls)
	}
}

func TestRunEmptyScrapeWithSourceErrorsFails(t *testing.T) {
	f := newFixture(&ingestorStub{results: map[string]ingest.Result{
		"2026-03-14": {
			Properties: []model.Property{prop("booli:1", 100)},
			Scraped:    1,
		},
		"2026-03-15": {SourceErrors: 1},
	}})
	ctx := context.Background()

	if _, err := f.job.RunForDate(ctx, "2026-03-14"); err != nil {
		t.Fatalf("day 1: %v", err)
	}

	_, err := f.job.RunForDate(ctx, "2026-03-15")
	if !errors.Is(err, ErrNothingScraped) {
		t.Fatalf("want ErrNothingScraped, got %v", err)
	}

	// The failed day must not wipe the stored snapshot.
	if len(f.properties.active) != 1 {
		t.Fatalf("failed scrape must leave snapshot untouched: %v", f.properties.active)
	}

	run := f.runs.byDate["2026-03-15"]
	if f.runs.finished[run.ID] != enums.RunStatusFailed {
		t.Fatalf("run not marked failed: %v", f.runs.finished)
	}
}

func TestRunIngestFailureMarksRunFailed(t *testing.T) {
	f := newFixture(&ingestorStub{err: errors.New("archive unavailable")})

	_, err := f.job.RunForDate(context.Background(), "2026-03-14")
	if err == nil {
		t.Fatalf("expected failure")
	}

	run := f.runs.byDate["2026-03-14"]
	if f.runs.finished[run.ID] != enums.RunStatusFailed {
		t.Fatalf("run not marked failed: %v", f.runs.finished)
	}
}
