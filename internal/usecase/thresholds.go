package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"HazardScanner/internal/ports"
)

// Hardcoded fallbacks when configuration storage has no value or the
// fetch fails.
const (
	DefaultRSSThreshold     = 0.70
	DefaultCitizenThreshold = 0.50
)

const (
	rssThresholdKey     = "confidence_threshold_rss"
	citizenThresholdKey = "confidence_threshold_citizen"
)

// Thresholds caches the auto-validation confidence pair. The first Get
// fetches both values from configuration storage; later calls return the
// cached pair. There is no automatic expiry: a long-lived worker must call
// Refresh (the scheduled runner does, at the start of every run) or be
// restarted to pick up admin-changed thresholds.
type Thresholds struct {
	store  ports.ConfigStore
	logger *slog.Logger

	mu      sync.Mutex
	rss     float64
	citizen float64
	loaded  bool
}

// NewThresholds wires the configuration store.
func NewThresholds(store ports.ConfigStore, logger *slog.Logger) *Thresholds {
	return &Thresholds{store: store, logger: logger}
}

// Get returns (rss, citizen) thresholds, fetching once and caching.
// Fetch failure falls back to the hardcoded defaults without failing the
// caller.
func (t *Thresholds) Get(ctx context.Context) (float64, float64) {
	if t == nil {
		return DefaultRSSThreshold, DefaultCitizenThreshold
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loaded {
		return t.rss, t.citizen
	}

	t.rss, t.citizen = t.fetch(ctx)
	t.loaded = true
	return t.rss, t.citizen
}

// Refresh drops the cached pair so the next Get re-reads storage.
func (t *Thresholds) Refresh() {
	t.mu.Lock()
	t.loaded = false
	t.mu.Unlock()
}

func (t *Thresholds) fetch(ctx context.Context) (float64, float64) {
	rss, citizen := DefaultRSSThreshold, DefaultCitizenThreshold

	if t.store == nil {
		return rss, citizen
	}

	values, err := t.store.ReadValues(ctx, []string{rssThresholdKey, citizenThresholdKey})
	if err != nil {
		t.warn("threshold fetch failed, using defaults", "error", err)
		return rss, citizen
	}

	if raw, ok := values[rssThresholdKey]; ok {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			rss = parsed
		} else {
			t.warn("unparseable rss threshold, using default", "value", raw)
		}
	} else {
		t.warn("rss threshold not configured, using default", "default", rss)
	}

	if raw, ok := values[citizenThresholdKey]; ok {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			citizen = parsed
		} else {
			t.warn("unparseable citizen threshold, using default", "value", raw)
		}
	} else {
		t.warn("citizen threshold not configured, using default", "default", citizen)
	}

	return rss, citizen
}

func (t *Thresholds) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}
