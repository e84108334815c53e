package rate

import (
	"context"
	"fmt"
	"time"
)

const scoringMinuteWindow = time.Minute

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter throttles outbound scoring-service calls. The counter lives in
// Redis so the cap holds across processes, not just per worker.
type Limiter struct {
	store     WindowStore
	perMinute int
}

func NewLimiter(store WindowStore, perMinute int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
	}
}

// Allow reserves one scoring call. When the minute budget is exhausted it
// returns allowed=false and the wait until the window resets.
func (l *Limiter) Allow(ctx context.Context) (time.Duration, bool, error) {
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}
	if l.perMinute == 0 {
		return 0, true, nil
	}

	count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(), scoringMinuteWindow)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.perMinute) {
		if ttl <= 0 {
			ttl = time.Second
		}
		return ttl, false, nil
	}

	return 0, true, nil
}

func minuteKey() string {
	return "rate:scoring:min"
}
