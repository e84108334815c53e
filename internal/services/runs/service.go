// Package runs exposes the daily-cycle ledger for the dashboard.
package runs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("runs dependencies are not configured")
)

const defaultHistoryLimit = 30

type Store interface {
	GetByDate(ctx context.Context, runDate string) (model.DailyRun, error)
	List(ctx context.Context, limit int) ([]model.DailyRun, error)
}

type SnapshotStore interface {
	ListByDate(ctx context.Context, runDate string) ([]pgrepo.ClassificationRecord, error)
}

type Service struct {
	store     Store
	snapshots SnapshotStore
}

func NewService(store Store, snapshots SnapshotStore) *Service {
	return &Service{store: store, snapshots: snapshots}
}

func (s *Service) History(ctx context.Context, limit int) ([]model.DailyRun, error) {
	if s.store == nil {
		return nil, ErrDependenciesNil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.List(ctx, limit)
}

// ByDate returns one ledger entry together with that day's per-property
// classifications, the diff audit trail the dashboard shows on the run
// detail view.
func (s *Service) ByDate(ctx context.Context, runDate string) (model.DailyRun, []pgrepo.ClassificationRecord, error) {
	if runDate == "" {
		return model.DailyRun{}, nil, ErrValidation
	}
	if s.store == nil {
		return model.DailyRun{}, nil, ErrDependenciesNil
	}

	run, err := s.store.GetByDate(ctx, runDate)
	if err != nil {
		return model.DailyRun{}, nil, err
	}
	if s.snapshots == nil {
		return run, nil, nil
	}

	entries, err := s.snapshots.ListByDate(ctx, runDate)
	if err != nil {
		return model.DailyRun{}, nil, fmt.Errorf("load classifications for %s: %w", runDate, err)
	}

	return run, entries, nil
}
