// Package ratelimit provides an in-process per-key token bucket limiter
// used when no shared redis limiter is configured.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Local limits each key to limit events per window, with bursts up to limit.
type Local struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
	now      func() time.Time
}

func NewLocal(limit int, window time.Duration) *Local {
	return &Local{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		now:      time.Now,
	}
}

func (l *Local) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Allow has the same shape as the redis sliding-window limiter. current is
// the number of tokens spent from the burst, this request included.
func (l *Local) Allow(_ context.Context, key string) (bool, int64, time.Duration, error) {
	lim := l.limiter(key)
	now := l.now()

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, int64(l.burst), 0, nil
	}

	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, int64(l.burst) + 1, delay, nil
	}

	used := int64(l.burst) - int64(lim.TokensAt(now))
	return true, used, 0, nil
}
