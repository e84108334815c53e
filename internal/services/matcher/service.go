// Package matcher orchestrates AI evaluation of listings against the
// household preference: batching, concurrency, rate limiting, bounded
// retries and idempotent persistence of the results.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
	"github.com/hamiltoon/housing-scout/internal/pkg/validate"
	"github.com/hamiltoon/housing-scout/internal/scoring"
)

var ErrDependenciesNil = errors.New("matcher dependencies are not configured")

type Scorer interface {
	ScoreBatch(ctx context.Context, preference string, listings []model.Property) ([]scoring.Result, error)
}

type MatchStore interface {
	InsertIgnoreDuplicates(ctx context.Context, matches []model.PropertyMatch) (int, error)
	ExistingForVersion(ctx context.Context, propertyIDs []string, version int) (map[string]bool, error)
}

type RateLimiter interface {
	Allow(ctx context.Context) (time.Duration, bool, error)
}

type Config struct {
	BatchSize     int
	MaxAttempts   int
	BackoffBase   time.Duration
	MaxConcurrent int
}

// Report sums up one evaluation pass. Evaluated counts listings sent to
// the scoring service, SkippedExisting those already scored for the
// current preference version, FailedBatches the batches dropped after the
// retry budget ran out.
type Report struct {
	Evaluated       int
	Persisted       int
	SkippedExisting int
	FailedBatches   int
}

type Service struct {
	scorer      Scorer
	matchStore  MatchStore
	rateLimiter RateLimiter
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewService(scorer Scorer, matchStore MatchStore, rateLimiter RateLimiter, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		scorer:      scorer,
		matchStore:  matchStore,
		rateLimiter: rateLimiter,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Evaluate scores listings against the preference and persists one match
// record per (property, preference version). Listings already scored for
// this version are skipped, so re-running after a crash or partial failure
// only fills the gaps. A batch that exhausts its retries is logged and
// counted; the remaining batches still run.
func (s *Service) Evaluate(ctx context.Context, pref model.SharedPreference, listings []model.Property, runID string) (Report, error) {
	if s.scorer == nil || s.matchStore == nil {
		return Report{}, ErrDependenciesNil
	}
	if len(listings) == 0 {
		return Report{}, nil
	}

	ids := make([]string, 0, len(listings))
	for _, p := range listings {
		ids = append(ids, p.ID)
	}
	existing, err := s.matchStore.ExistingForVersion(ctx, ids, pref.Version)
	if err != nil {
		return Report{}, fmt.Errorf("load existing matches: %w", err)
	}

	pending := make([]model.Property, 0, len(listings))
	skipped := 0
	for _, p := range listings {
		if existing[p.ID] {
			skipped++
			continue
		}
		pending = append(pending, p)
	}

	report := Report{SkippedExisting: skipped}
	if len(pending) == 0 {
		return report, nil
	}

	batches := chunk(pending, s.cfg.BatchSize)

	var mu sync.Mutex
	sem := semaphore.NewWeighted(int64(s.cfg.MaxConcurrent))
	group, groupCtx := errgroup.WithContext(ctx)

	for i := range batches {
		batch := batches[i]
		group.Go(func() error {
			if err := sem.Acquire(groupCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			results, err := s.scoreWithRetry(groupCtx, pref.Query, batch)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				s.logger.Warn("scoring batch failed, giving up",
					zap.Int("batch_size", len(batch)),
					zap.Error(err),
				)
				mu.Lock()
				report.FailedBatches++
				mu.Unlock()
				return nil
			}

			matches := s.toMatches(results, pref.Version, runID)
			inserted, err := s.matchStore.InsertIgnoreDuplicates(groupCtx, matches)
			if err != nil {
				return fmt.Errorf("persist matches: %w", err)
			}

			mu.Lock()
			report.Evaluated += len(batch)
			report.Persisted += inserted
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Service) scoreWithRetry(ctx context.Context, preference string, batch []model.Property) ([]scoring.Result, error) {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if err := s.waitForSlot(ctx); err != nil {
			return nil, err
		}

		results, err := s.scorer.ScoreBatch(ctx, preference, batch)
		if err == nil {
			return results, nil
		}
		lastErr = err

		var scoreErr *scoring.Error
		if !errors.As(err, &scoreErr) {
			return nil, err
		}
		if attempt == s.cfg.MaxAttempts {
			break
		}

		backoff := s.cfg.BackoffBase << (attempt - 1)
		s.logger.Debug("scoring batch attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.String("kind", string(scoreErr.Kind)),
			zap.Duration("backoff", backoff),
		)
		if err := s.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// waitForSlot blocks until the shared per-minute budget grants a call.
func (s *Service) waitForSlot(ctx context.Context) error {
	if s.rateLimiter == nil {
		return nil
	}

	for {
		retryAfter, allowed, err := s.rateLimiter.Allow(ctx)
		if err != nil {
			return fmt.Errorf("scoring rate limit: %w", err)
		}
		if allowed {
			return nil
		}
		if err := s.sleep(ctx, retryAfter); err != nil {
			return err
		}
	}
}

func (s *Service) toMatches(results []scoring.Result, version int, runID string) []model.PropertyMatch {
	now := s.now().UTC()

	matches := make([]model.PropertyMatch, 0, len(results))
	for _, res := range results {
		score := res.MatchScore
		if !validate.ScoreInRange(score) {
			s.logger.Warn("scoring result out of range, clamping",
				zap.String("property_id", res.PropertyID),
				zap.Float64("match_score", score),
			)
			if score < 0 {
				score = 0
			} else {
				score = 1
			}
		}

		matches = append(matches, model.PropertyMatch{
			PropertyID:        res.PropertyID,
			PreferenceVersion: version,
			MatchScore:        score,
			CriteriaMet:       res.CriteriaMet,
			CriteriaMissed:    res.CriteriaMissed,
			Reasoning:         res.Reasoning,
			RunID:             runID,
			CreatedAt:         now,
		})
	}
	return matches
}

func chunk(listings []model.Property, size int) [][]model.Property {
	batches := make([][]model.Property, 0, (len(listings)+size-1)/size)
	for start := 0; start < len(listings); start += size {
		end := start + size
		if end > len(listings) {
			end = len(listings)
		}
		batches = append(batches, listings[start:end])
	}
	return batches
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
