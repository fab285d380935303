package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"HazardScanner/internal/content"
	"HazardScanner/internal/domain"
	"HazardScanner/internal/feed"
	"HazardScanner/internal/geo"
	"HazardScanner/internal/ports"
)

// ProcessorDeps wires all driven adapters into the feed processor.
type ProcessorDeps struct {
	Fetcher    ports.FeedFetcher
	Classifier ports.HazardClassifier
	Locations  ports.LocationExtractor
	Geocoder   ports.Geocoder
	Repository ports.HazardRepository
	Sources    ports.FeedSourceStore
	Thresholds *Thresholds
	Detector   *DuplicateDetector
	Logger     *slog.Logger

	// ClassificationThreshold gates the classifier's is_hazard decision.
	ClassificationThreshold float64
	// DefaultFeeds are used when no active sources are configured.
	DefaultFeeds []string
}

// Processor orchestrates the per-feed ingestion pipeline: fetch, extract,
// classify, locate, dedup-check, persist. Feeds process sequentially;
// a single entry's or feed's failure never aborts the rest of the run.
type Processor struct {
	fetcher    ports.FeedFetcher
	classifier ports.HazardClassifier
	locations  ports.LocationExtractor
	geocoder   ports.Geocoder
	repository ports.HazardRepository
	sources    ports.FeedSourceStore
	thresholds *Thresholds
	detector   *DuplicateDetector
	logger     *slog.Logger

	threshold    float64
	defaultFeeds []string
	now          func() time.Time

	mu    sync.Mutex
	stats domain.Statistics
}

// NewProcessor constructs the orchestration component.
func NewProcessor(deps ProcessorDeps) *Processor {
	threshold := deps.ClassificationThreshold
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Processor{
		fetcher:      deps.Fetcher,
		classifier:   deps.Classifier,
		locations:    deps.Locations,
		geocoder:     deps.Geocoder,
		repository:   deps.Repository,
		sources:      deps.Sources,
		thresholds:   deps.Thresholds,
		detector:     deps.Detector,
		logger:       deps.Logger,
		threshold:    threshold,
		defaultFeeds: deps.DefaultFeeds,
		now:          time.Now,
	}
}

// ProcessAllFeeds loads the configured sources and processes each in turn.
// Run statistics reset at the start. Always returns a structured result
// per feed; partial failure never surfaces as an error.
func (p *Processor) ProcessAllFeeds(ctx context.Context) []domain.FeedRunResult {
	feeds := p.loadFeedURLs(ctx)

	p.mu.Lock()
	p.stats = domain.Statistics{}
	p.mu.Unlock()

	results := make([]domain.FeedRunResult, 0, len(feeds))
	for _, feedURL := range feeds {
		results = append(results, p.ProcessFeed(ctx, feedURL))
	}

	stats := p.Statistics()
	p.info("rss processing complete",
		"processed", stats.TotalProcessed,
		"stored", stats.TotalStored,
		"duplicates", stats.DuplicatesDetected,
		"errors", stats.Errors)

	return results
}

// ProcessFeed runs one feed through the pipeline and returns its result.
func (p *Processor) ProcessFeed(ctx context.Context, feedURL string) domain.FeedRunResult {
	start := p.now()
	result := domain.FeedRunResult{FeedURL: feedURL, Status: domain.RunStatusSuccess}

	p.info("processing rss feed", "feed_url", feedURL)

	if err := feed.ValidateURL(feedURL); err != nil {
		p.addErrors(1)
		result.Status = domain.RunStatusError
		result.ErrorMessage = err.Error()
		result.ProcessingTime = p.now().Sub(start)
		p.warn("feed url rejected", "feed_url", feedURL, "error", err)
		return result
	}

	entries, err := p.fetchEntries(ctx, feedURL)
	if err != nil {
		p.addErrors(1)
		result.Status = domain.RunStatusError
		result.ErrorMessage = err.Error()
		result.ProcessingTime = p.now().Sub(start)
		p.logError("feed processing failed", "feed_url", feedURL, "error", err)
		return result
	}

	for _, entry := range entries {
		result.ItemsProcessed++
		p.addProcessed(1)

		saved, duplicate := p.processEntry(ctx, entry, feedURL)
		if duplicate {
			result.DuplicatesDetected++
			continue
		}
		if saved != nil {
			result.ItemsAdded++
			result.HazardsSaved = append(result.HazardsSaved, *saved)
		}
	}

	result.ProcessingTime = p.now().Sub(start)
	p.info("completed feed",
		"feed_url", feedURL,
		"items_added", result.ItemsAdded,
		"items_processed", result.ItemsProcessed,
		"duplicates", result.DuplicatesDetected)
	return result
}

// Statistics returns the run-level counters with derived rates. Rates are
// zero when nothing was processed.
func (p *Processor) Statistics() domain.Statistics {
	p.mu.Lock()
	stats := p.stats
	p.mu.Unlock()

	if stats.TotalProcessed > 0 {
		total := float64(stats.TotalProcessed)
		stats.DuplicateRatePercent = round2(float64(stats.DuplicatesDetected) / total * 100)
		stats.ErrorRatePercent = round2(float64(stats.Errors) / total * 100)
	}
	return stats
}

func (p *Processor) loadFeedURLs(ctx context.Context) []string {
	var urls []string

	if p.sources != nil {
		sources, err := p.sources.ListActiveSources(ctx)
		if err != nil {
			p.logError("loading feed sources failed, using defaults", "error", err)
		}
		for _, src := range sources {
			urls = append(urls, src.URL)
		}
	}

	if len(urls) == 0 {
		urls = p.defaultFeeds
		p.info("using default feeds", "count", len(urls))
	}

	valid := make([]string, 0, len(urls))
	for _, u := range urls {
		if err := feed.ValidateURL(u); err != nil {
			p.warn("skipping invalid feed url", "feed_url", u, "error", err)
			continue
		}
		valid = append(valid, u)
	}
	return valid
}

func (p *Processor) fetchEntries(ctx context.Context, feedURL string) ([]domain.RawEntry, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("feed fetcher is not configured")
	}
	return p.fetcher.Fetch(ctx, feedURL)
}

// processEntry runs a single entry through extraction, classification,
// location resolution, duplicate check, and persistence. Returns the saved
// summary (nil when skipped) and whether the entry was a duplicate.
func (p *Processor) processEntry(ctx context.Context, entry domain.RawEntry, feedURL string) (*domain.HazardSummary, bool) {
	extracted := content.Extract(entry)
	if extracted.CombinedText == "" {
		p.debug("skipping entry with no content", "title", entry.Title)
		return nil, false
	}

	classification, err := p.classifier.Classify(ctx, extracted.CombinedText, p.threshold)
	if err != nil {
		p.addErrors(1)
		p.logError("classification failed", "link", entry.Link, "error", err)
		return nil, false
	}
	if !classification.IsHazard {
		p.debug("not classified as hazard", "title", extracted.Title)
		return nil, false
	}

	locations, err := p.locations.ExtractLocations(ctx, extracted.CombinedText)
	if err != nil {
		p.addErrors(1)
		p.logError("location extraction failed", "link", entry.Link, "error", err)
		return nil, false
	}

	primary := p.resolvePrimaryLocation(ctx, locations)
	if primary == nil {
		p.debug("no usable location coordinates", "title", extracted.Title)
		return nil, false
	}

	if isDup, existingID := p.detector.Check(ctx, entry.Link, extracted, primary); isDup {
		p.info("duplicate detected", "title", extracted.Title, "matches", existingID)
		p.addDuplicates(1)
		return nil, true
	}

	summary, err := p.persistHazard(ctx, entry, extracted, classification, *primary, feedURL)
	if err != nil {
		p.addErrors(1)
		p.logError("saving hazard failed", "title", extracted.Title, "error", err)
		return nil, false
	}

	p.addStored(1)
	p.info("saved hazard", "title", extracted.Title, "id", summary.ID)
	return summary, false
}

// resolvePrimaryLocation picks the first candidate with both coordinates,
// preferring pattern matches over geocoded ones. When no candidate carries
// coordinates, one direct geocode lookup on the first place name is tried.
func (p *Processor) resolvePrimaryLocation(ctx context.Context, locations []domain.ExtractedLocation) *domain.ExtractedLocation {
	for _, loc := range locations {
		if loc.HasCoordinates() && loc.Source == domain.LocationSourcePattern {
			return &loc
		}
	}
	for _, loc := range locations {
		if loc.HasCoordinates() {
			return &loc
		}
	}

	if p.geocoder == nil || len(locations) == 0 {
		return nil
	}

	candidate := locations[0]
	coords, err := p.geocoder.Geocode(ctx, candidate.Name)
	if err != nil {
		p.logError("geocode fallback failed", "location", candidate.Name, "error", err)
		return nil
	}
	if coords == nil {
		return nil
	}

	candidate.Latitude = &coords.Latitude
	candidate.Longitude = &coords.Longitude
	candidate.Source = domain.LocationSourceGeocoded
	return &candidate
}

func (p *Processor) persistHazard(
	ctx context.Context,
	entry domain.RawEntry,
	extracted domain.ExtractedContent,
	classification domain.ClassificationResult,
	primary domain.ExtractedLocation,
	feedURL string,
) (*domain.HazardSummary, error) {
	lat, lng := *primary.Latitude, *primary.Longitude
	if !geo.WithinPhilippines(lat, lng) {
		return nil, fmt.Errorf("location outside Philippine bounds")
	}

	rssThreshold, _ := p.thresholds.Get(ctx)
	autoValidated := classification.Score >= rssThreshold

	now := p.now().UTC()
	hazard := domain.Hazard{
		Type:            domain.HazardTypeFromLabel(classification.Label),
		Status:          "active",
		Latitude:        lat,
		Longitude:       lng,
		LocationName:    primary.Name,
		AdminDivision:   primary.AdminDivision,
		ConfidenceScore: classification.Score,
		SourceType:      domain.SourceRSS,
		SourceURL:       entry.Link,
		SourceTitle:     extracted.Title,
		SourceContent:   extracted.CombinedText,
		ContentHash:     content.Hash(extracted),
		DetectedAt:      now,
		Validated:       autoValidated,
		SourceFeed:      feedURL,
	}
	if !entry.PublishedAt.IsZero() {
		published := entry.PublishedAt
		hazard.SourcePublishedAt = &published
	}
	if autoValidated {
		hazard.ValidatedAt = &now
		hazard.ValidationNotes = fmt.Sprintf("Auto-validated (confidence %.4f >= %.2f)", classification.Score, rssThreshold)
		p.info("auto-validating hazard", "confidence", classification.Score, "threshold", rssThreshold)
	}

	id, err := p.repository.SaveHazard(ctx, hazard)
	if err != nil {
		return nil, err
	}

	return &domain.HazardSummary{
		ID:              id,
		Title:           extracted.Title,
		HazardType:      hazard.Type,
		ConfidenceScore: classification.Score,
		LocationName:    primary.Name,
	}, nil
}

func (p *Processor) addProcessed(n int) { p.mu.Lock(); p.stats.TotalProcessed += n; p.mu.Unlock() }
func (p *Processor) addStored(n int)    { p.mu.Lock(); p.stats.TotalStored += n; p.mu.Unlock() }
func (p *Processor) addDuplicates(n int) {
	p.mu.Lock()
	p.stats.DuplicatesDetected += n
	p.mu.Unlock()
}
func (p *Processor) addErrors(n int) { p.mu.Lock(); p.stats.Errors += n; p.mu.Unlock() }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (p *Processor) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Processor) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Processor) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Processor) logError(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
