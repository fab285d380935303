package geocode

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterFirstCallImmediate(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(time.Second)
	var slept time.Duration
	limiter.sleep = func(ctx context.Context, d time.Duration) error {
		slept += d
		return nil
	}

	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if slept != 0 {
		t.Fatalf("first call should not sleep, slept %v", slept)
	}
}

func TestRateLimiterEnforcesInterval(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 10, 8, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(time.Second)
	limiter.now = func() time.Time { return now }

	var slept []time.Duration
	limiter.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	ctx := context.Background()

	// Back-to-back calls at the same instant queue one interval apart.
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("Wait error: %v", err)
		}
	}

	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(slept))
	}
	if slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Fatalf("unexpected sleep schedule: %v", slept)
	}
}

func TestRateLimiterPartialDelta(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 10, 8, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(time.Second)
	limiter.now = func() time.Time { return now }

	var slept []time.Duration
	limiter.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	ctx := context.Background()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("Wait error: %v", err)
	}

	// 400ms later, only the remaining 600ms must be waited.
	now = now.Add(400 * time.Millisecond)
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("Wait error: %v", err)
	}

	if len(slept) != 1 || slept[0] != 600*time.Millisecond {
		t.Fatalf("expected one 600ms sleep, got %v", slept)
	}
}

func TestRateLimiterContextCancel(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first Wait error: %v", err)
	}

	cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatalf("expected context error from second Wait")
	}
}
