// Package candidates serves the scored listing feed the dashboard swipes
// through: live properties joined with their match record for the current
// preference version and both users' decisions, best score first.
package candidates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
	redrepo "github.com/hamiltoon/housing-scout/internal/repo/redis"
)

var ErrDependenciesNil = errors.New("candidates dependencies are not configured")

const cacheKey = "cache:candidates"

type MatchStore interface {
	ListCandidates(ctx context.Context, version int, userA, userB string) ([]pgrepo.CandidateRecord, error)
}

type PreferenceProvider interface {
	Get(ctx context.Context) (model.SharedPreference, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Config struct {
	UserA    string
	UserB    string
	CacheTTL time.Duration
}

// Feed is the cached payload: candidates plus the preference version they
// were scored against.
type Feed struct {
	PreferenceVersion int                     `json:"preference_version"`
	Candidates        []pgrepo.CandidateRecord `json:"candidates"`
}

type Service struct {
	matchStore MatchStore
	prefs      PreferenceProvider
	cache      Cache
	cfg        Config
	logger     *zap.Logger
}

func NewService(matchStore MatchStore, prefs PreferenceProvider, cache Cache, cfg Config, logger *zap.Logger) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		matchStore: matchStore,
		prefs:      prefs,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
	}
}

// List returns the feed for the current preference version. Cache failures
// degrade to a direct database read; a version mismatch in the cached blob
// counts as a miss.
func (s *Service) List(ctx context.Context) (Feed, error) {
	if s.matchStore == nil || s.prefs == nil {
		return Feed{}, ErrDependenciesNil
	}

	pref, err := s.prefs.Get(ctx)
	if err != nil {
		return Feed{}, fmt.Errorf("load preference: %w", err)
	}

	if s.cache != nil {
		if cached, ok := s.fromCache(ctx, pref.Version); ok {
			return cached, nil
		}
	}

	records, err := s.matchStore.ListCandidates(ctx, pref.Version, s.cfg.UserA, s.cfg.UserB)
	if err != nil {
		return Feed{}, fmt.Errorf("list candidates: %w", err)
	}

	feed := Feed{
		PreferenceVersion: pref.Version,
		Candidates:        records,
	}

	if s.cache != nil {
		payload, err := json.Marshal(feed)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("cache candidates feed", zap.Error(err))
			}
		}
	}

	return feed, nil
}

// Invalidate drops the cached feed. Called after swipes, favorite edits
// and preference changes so the dashboard never shows a stale pair or
// favorite state.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *Service) fromCache(ctx context.Context, version int) (Feed, bool) {
	payload, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, redrepo.ErrCacheMiss) {
			s.logger.Warn("read candidates cache", zap.Error(err))
		}
		return Feed{}, false
	}

	var feed Feed
	if err := json.Unmarshal(payload, &feed); err != nil {
		s.logger.Warn("decode candidates cache", zap.Error(err))
		return Feed{}, false
	}
	if feed.PreferenceVersion != version {
		return Feed{}, false
	}
	return feed, true
}
