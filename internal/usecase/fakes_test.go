package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"HazardScanner/internal/domain"
)

type fakeConfigStore struct {
	values map[string]string
	err    error
	calls  int
}

func (s *fakeConfigStore) ReadValues(ctx context.Context, keys []string) (map[string]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.values, nil
}

// fakeRepo scripts duplicate lookups and records saves plus call order.
type fakeRepo struct {
	mu sync.Mutex

	urlID    string
	urlFound bool
	urlErr   error

	hashID    string
	hashFound bool
	hashErr   error

	nearbyID    string
	nearbyFound bool
	nearbyErr   error

	saveErr error
	saved   []domain.Hazard

	lookups   []string
	lastSince time.Time
}

func (r *fakeRepo) SaveHazard(ctx context.Context, hazard domain.Hazard) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return "", r.saveErr
	}
	r.saved = append(r.saved, hazard)
	return fmt.Sprintf("haz-%d", len(r.saved)), nil
}

func (r *fakeRepo) FindBySourceURL(ctx context.Context, sourceURL string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, "url")
	return r.urlID, r.urlFound, r.urlErr
}

func (r *fakeRepo) FindByContentHash(ctx context.Context, hash string, since time.Time) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, "hash")
	r.lastSince = since
	return r.hashID, r.hashFound, r.hashErr
}

func (r *fakeRepo) FindNearby(ctx context.Context, lat, lng, radiusKm float64, since time.Time) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, "nearby")
	return r.nearbyID, r.nearbyFound, r.nearbyErr
}

type fakeFetcher struct {
	entries map[string][]domain.RawEntry
	errs    map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedURL string) ([]domain.RawEntry, error) {
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	return f.entries[feedURL], nil
}

type fakeClassifier struct {
	result domain.ClassificationResult
	err    error
}

func (c *fakeClassifier) Classify(ctx context.Context, text string, threshold float64) (domain.ClassificationResult, error) {
	return c.result, c.err
}

type fakeLocator struct {
	locations []domain.ExtractedLocation
	err       error
}

func (l *fakeLocator) ExtractLocations(ctx context.Context, text string) ([]domain.ExtractedLocation, error) {
	return l.locations, l.err
}

type fakeGeocoder struct {
	coords *domain.Coordinates
	err    error
	calls  int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, locationName string) (*domain.Coordinates, error) {
	g.calls++
	return g.coords, g.err
}

type fakeSources struct {
	sources []domain.FeedSource
	err     error
}

func (s *fakeSources) ListActiveSources(ctx context.Context) ([]domain.FeedSource, error) {
	return s.sources, s.err
}

type fakeLogStore struct {
	mu      sync.Mutex
	entries []domain.ProcessingLogEntry
	err     error
}

func (s *fakeLogStore) SaveLog(ctx context.Context, entry domain.ProcessingLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

type fakeDriver struct {
	started bool
	stopped bool
	job     func(time.Time)
}

func (d *fakeDriver) Start(ctx context.Context, job func(time.Time)) error {
	d.started = true
	d.job = job
	return nil
}

func (d *fakeDriver) Stop(ctx context.Context) error {
	d.stopped = true
	return nil
}

func ptr(v float64) *float64 { return &v }
