package domain

import "time"

// HazardType is the storage-side hazard category enum.
type HazardType string

const (
	HazardFlood            HazardType = "flood"
	HazardFire             HazardType = "fire"
	HazardEarthquake       HazardType = "earthquake"
	HazardTyphoon          HazardType = "typhoon"
	HazardLandslide        HazardType = "landslide"
	HazardVolcanicEruption HazardType = "volcanic_eruption"
	HazardDrought          HazardType = "drought"
	HazardTsunami          HazardType = "tsunami"
	HazardStormSurge       HazardType = "storm_surge"
	HazardTornado          HazardType = "tornado"
	HazardOther            HazardType = "other"
)

// hazardTypeByLabel maps classifier taxonomy labels to storage values.
var hazardTypeByLabel = map[string]HazardType{
	"flooding":          HazardFlood,
	"fire":              HazardFire,
	"earthquake":        HazardEarthquake,
	"typhoon":           HazardTyphoon,
	"landslide":         HazardLandslide,
	"volcanic eruption": HazardVolcanicEruption,
	"drought":           HazardDrought,
	"tsunami":           HazardTsunami,
	"storm surge":       HazardStormSurge,
	"tornado":           HazardTornado,
}

// HazardTypeFromLabel resolves a classifier label to its storage enum value,
// falling back to HazardOther for labels outside the taxonomy.
func HazardTypeFromLabel(label string) HazardType {
	if t, ok := hazardTypeByLabel[label]; ok {
		return t
	}
	return HazardOther
}

// Source types for persisted hazards.
const (
	SourceRSS           = "rss"
	SourceCitizenReport = "citizen_report"
)

// FeedSource is an admin-configured RSS feed, read at run start.
type FeedSource struct {
	URL           string
	DisplayName   string
	Category      string
	Priority      int
	FetchInterval time.Duration
	IsActive      bool
}

// RawEntry is a single feed item before extraction. Never persisted.
type RawEntry struct {
	Title       string
	Summary     string
	BodyHTML    string
	Link        string
	PublishedAt time.Time
}

// ExtractedContent is the HTML-stripped, whitespace-normalized form of a
// RawEntry. CombinedText is the classification input with the title first.
type ExtractedContent struct {
	Title        string
	Description  string
	Body         string
	CombinedText string
}

// ClassificationResult is the output of the zero-shot hazard classifier.
// Label is empty when the text does not match any category.
type ClassificationResult struct {
	Label    string
	Score    float64
	IsHazard bool
	Scores   map[string]float64
}

// Location sources, in decreasing precision.
const (
	LocationSourcePattern  = "pattern"
	LocationSourceGeocoded = "geocoded"
)

// ExtractedLocation is a place mention resolved by geo-NER or geocoding.
// Coordinates are nil when the mention could not be resolved.
type ExtractedLocation struct {
	Name          string
	AdminDivision string
	Latitude      *float64
	Longitude     *float64
	Confidence    float64
	Source        string
}

// HasCoordinates reports whether both coordinates are populated.
func (l ExtractedLocation) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Coordinates is a decimal-degree lat/lng pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Hazard is a validated (or pending-validation) hazard event record.
// Metadata carries open-ended attributes outside the fixed core field set.
type Hazard struct {
	ID                string
	Type              HazardType
	Severity          string
	Status            string
	Latitude          float64
	Longitude         float64
	LocationName      string
	AdminDivision     string
	ConfidenceScore   float64
	ModelVersion      string
	SourceType        string
	SourceURL         string
	SourceTitle       string
	SourceContent     string
	SourcePublishedAt *time.Time
	ContentHash       string
	DetectedAt        time.Time
	Validated         bool
	ValidatedAt       *time.Time
	ValidationNotes   string
	SourceFeed        string
	Metadata          map[string]string
}

// HazardSummary is the per-run digest of one saved hazard.
type HazardSummary struct {
	ID              string
	Title           string
	HazardType      HazardType
	ConfidenceScore float64
	LocationName    string
}

// Feed run statuses.
const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// FeedRunResult summarizes the processing of one feed within a run.
type FeedRunResult struct {
	FeedURL            string
	Status             string
	ItemsProcessed     int
	ItemsAdded         int
	DuplicatesDetected int
	HazardsSaved       []HazardSummary
	ProcessingTime     time.Duration
	ErrorMessage       string
}

// ProcessingLogEntry is the durable audit record written per feed per run.
type ProcessingLogEntry struct {
	FeedURL            string
	Status             string
	ItemsProcessed     int
	ItemsAdded         int
	DuplicatesDetected int
	ErrorsCount        int
	ProcessingTime     time.Duration
	HazardIDs          []string
	ErrorMessage       string
	ProcessedBy        string
}

// Statistics aggregates counters across all feeds of a run.
type Statistics struct {
	TotalProcessed       int
	TotalStored          int
	DuplicatesDetected   int
	Errors               int
	DuplicateRatePercent float64
	ErrorRatePercent     float64
}
