package usecase

import (
	"context"
	"log/slog"
	"time"

	"HazardScanner/internal/content"
	"HazardScanner/internal/domain"
	"HazardScanner/internal/ports"
)

// Radius for the geospatial proximity strategy.
const proximityRadiusKm = 5.0

// DuplicateDetector decides whether an equivalent hazard record already
// exists, using three escalating strategies: exact URL, content hash
// within the time window, then geographic+temporal proximity. A lookup
// failure is treated as not-duplicate so a transient store fault never
// blocks ingestion.
type DuplicateDetector struct {
	repo   ports.HazardRepository
	window time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewDuplicateDetector wires the repository and the detection window.
func NewDuplicateDetector(repo ports.HazardRepository, window time.Duration, logger *slog.Logger) *DuplicateDetector {
	if window <= 0 {
		window = 48 * time.Hour
	}
	return &DuplicateDetector{
		repo:   repo,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// Check returns whether the candidate duplicates an existing hazard and,
// if so, the existing record's ID. Strategies short-circuit on first match.
func (d *DuplicateDetector) Check(ctx context.Context, sourceURL string, extracted domain.ExtractedContent, primary *domain.ExtractedLocation) (bool, string) {
	if d == nil || d.repo == nil {
		return false, ""
	}

	if sourceURL != "" {
		id, found, err := d.repo.FindBySourceURL(ctx, sourceURL)
		if err != nil {
			d.logError("url duplicate lookup failed", err)
			return false, ""
		}
		if found {
			return true, id
		}
	}

	since := d.now().UTC().Add(-d.window)

	hash := content.Hash(extracted)
	id, found, err := d.repo.FindByContentHash(ctx, hash, since)
	if err != nil {
		d.logError("content-hash duplicate lookup failed", err)
		return false, ""
	}
	if found {
		return true, id
	}

	if primary != nil && primary.HasCoordinates() {
		id, found, err := d.repo.FindNearby(ctx, *primary.Latitude, *primary.Longitude, proximityRadiusKm, since)
		if err != nil {
			d.logError("proximity duplicate lookup failed", err)
			return false, ""
		}
		if found {
			return true, id
		}
	}

	return false, ""
}

func (d *DuplicateDetector) logError(msg string, err error) {
	if d.logger != nil {
		d.logger.Error(msg, "error", err)
	}
}
