package geocode

import (
	"context"
	"sync"
	"time"
)

// RateLimiter serializes calls to the geocoding service so consecutive
// requests are at least one interval apart, process-wide. It owns a
// mutex-guarded reservation timestamp and is injected into every caller
// that shares the service.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter builds a limiter with the given minimum interval.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait reserves the next allowed slot and blocks until it arrives. Callers
// that arrive before the interval has elapsed sleep for the remaining
// delta; concurrent callers are queued one interval apart.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := r.now()
	slot := r.next
	if slot.Before(now) {
		slot = now
	}
	r.next = slot.Add(r.interval)
	r.mu.Unlock()

	if delta := slot.Sub(now); delta > 0 {
		return r.sleep(ctx, delta)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
