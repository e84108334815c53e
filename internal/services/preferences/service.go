// Package preferences manages the single shared search preference. There
// is exactly one preference row for the household; editing its text bumps
// the version, which is what re-triggers AI evaluation of live listings.
package preferences

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("preference dependencies are not configured")
)

type Store interface {
	Ensure(ctx context.Context, defaultQuery string) error
	Get(ctx context.Context) (model.SharedPreference, error)
	UpdateQuery(ctx context.Context, query string) (model.SharedPreference, error)
}

// CandidateCache is notified when the preference changes so stale scored
// candidates disappear immediately instead of at TTL expiry.
type CandidateCache interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	store  Store
	cache  CandidateCache
	logger *zap.Logger
}

func NewService(store Store, cache CandidateCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Bootstrap creates the singleton preference on first start.
func (s *Service) Bootstrap(ctx context.Context, defaultQuery string) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	return s.store.Ensure(ctx, defaultQuery)
}

func (s *Service) Get(ctx context.Context) (model.SharedPreference, error) {
	if s.store == nil {
		return model.SharedPreference{}, ErrDependenciesNil
	}
	return s.store.Get(ctx)
}

// Update replaces the preference text. Submitting the current text
// unchanged is a no-op and keeps the version, so accidental re-saves do
// not trigger a full re-evaluation of every live listing.
func (s *Service) Update(ctx context.Context, query string) (model.SharedPreference, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.SharedPreference{}, ErrValidation
	}
	if s.store == nil {
		return model.SharedPreference{}, ErrDependenciesNil
	}

	current, err := s.store.Get(ctx)
	if err != nil {
		return model.SharedPreference{}, err
	}
	if current.Query == query {
		return current, nil
	}

	updated, err := s.store.UpdateQuery(ctx, query)
	if err != nil {
		return model.SharedPreference{}, err
	}

	s.logger.Info("preference updated",
		zap.Int("old_version", current.Version),
		zap.Int("new_version", updated.Version),
	)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("invalidate candidate cache", zap.Error(err))
		}
	}

	return updated, nil
}
