package ports

import (
	"context"
	"time"

	"HazardScanner/internal/domain"
)

// FeedFetcher pulls and parses one feed into raw entries.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]domain.RawEntry, error)
}

// HazardClassifier scores free text against the hazard taxonomy.
type HazardClassifier interface {
	Classify(ctx context.Context, text string, threshold float64) (domain.ClassificationResult, error)
}

// LocationExtractor resolves place mentions in text, best candidates first.
type LocationExtractor interface {
	ExtractLocations(ctx context.Context, text string) ([]domain.ExtractedLocation, error)
}

// Geocoder resolves a free-form place name to coordinates via an external
// service. A nil result with nil error means no usable match.
type Geocoder interface {
	Geocode(ctx context.Context, locationName string) (*domain.Coordinates, error)
}

// HazardRepository persists hazards and answers duplicate-detection lookups.
type HazardRepository interface {
	SaveHazard(ctx context.Context, hazard domain.Hazard) (string, error)
	FindBySourceURL(ctx context.Context, sourceURL string) (string, bool, error)
	FindByContentHash(ctx context.Context, hash string, since time.Time) (string, bool, error)
	FindNearby(ctx context.Context, lat, lng, radiusKm float64, since time.Time) (string, bool, error)
}

// FeedSourceStore lists admin-configured feeds for a run.
type FeedSourceStore interface {
	ListActiveSources(ctx context.Context) ([]domain.FeedSource, error)
}

// ConfigStore reads key-value configuration rows.
type ConfigStore interface {
	ReadValues(ctx context.Context, keys []string) (map[string]string, error)
}

// ProcessingLogStore records per-feed run outcomes for audit/monitoring.
type ProcessingLogStore interface {
	SaveLog(ctx context.Context, entry domain.ProcessingLogEntry) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
