package runs

import (
	"context"
	"errors"
	"testing"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
)

type storeStub struct {
	runs      []model.DailyRun
	lastLimit int
}

func (s *storeStub) GetByDate(_ context.Context, runDate string) (model.DailyRun, error) {
	for _, run := range s.runs {
		if run.RunDate == runDate {
			return run, nil
		}
	}
	return model.DailyRun{}, pgrepo.ErrRunNotFound
}

func (s *storeStub) List(_ context.Context, limit int) ([]model.DailyRun, error) {
	s.lastLimit = limit
	return s.runs, nil
}

type snapshotStub struct {
	byDate map[string][]pgrepo.ClassificationRecord
}

func (s *snapshotStub) ListByDate(_ context.Context, runDate string) ([]pgrepo.ClassificationRecord, error) {
	return s.byDate[runDate], nil
}

func TestHistoryDefaultsLimit(t *testing.T) {
	store := &storeStub{runs: []model.DailyRun{{ID: "run-1", RunDate: "2026-03-14", Status: enums.RunStatusCompleted}}}
	svc := NewService(store, nil)

	runs, err := svc.History(context.Background(), 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if store.lastLimit != defaultHistoryLimit {
		t.Fatalf("want default limit %d, got %d", defaultHistoryLimit, store.lastLimit)
	}
}

func TestByDate(t *testing.T) {
	store := &storeStub{runs: []model.DailyRun{{ID: "run-1", RunDate: "2026-03-14"}}}
	snapshots := &snapshotStub{byDate: map[string][]pgrepo.ClassificationRecord{
		"2026-03-14": {
			{PropertyID: "booli:1", Classification: "new"},
			{PropertyID: "booli:2", Classification: "updated", Changes: []model.FieldChange{{Field: "price", Old: "100", New: "120"}}},
		},
	}}
	svc := NewService(store, snapshots)

	run, entries, err := svc.ByDate(context.Background(), "2026-03-14")
	if err != nil || run.ID != "run-1" {
		t.Fatalf("unexpected result: %+v err=%v", run, err)
	}
	if len(entries) != 2 || entries[1].Classification != "updated" || len(entries[1].Changes) != 1 {
		t.Fatalf("unexpected classifications: %+v", entries)
	}

	if _, _, err := svc.ByDate(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if _, _, err := svc.ByDate(context.Background(), "2026-03-15"); !errors.Is(err, pgrepo.ErrRunNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestByDateWithoutSnapshotStore(t *testing.T) {
	store := &storeStub{runs: []model.DailyRun{{ID: "run-1", RunDate: "2026-03-14"}}}
	svc := NewService(store, nil)

	run, entries, err := svc.ByDate(context.Background(), "2026-03-14")
	if err != nil || run.ID != "run-1" {
		t.Fatalf("unexpected result: %+v err=%v", run, err)
	}
	if entries != nil {
		t.Fatalf("want no classifications, got %+v", entries)
	}
}
