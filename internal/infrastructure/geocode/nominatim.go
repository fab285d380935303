package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"HazardScanner/internal/domain"
	"HazardScanner/internal/geo"
	"HazardScanner/internal/ports"
)

// NominatimClient resolves place names through the OpenStreetMap Nominatim
// search API. All lookups share one injected RateLimiter to honor the
// 1 request/second usage policy.
type NominatimClient struct {
	endpoint  string
	userAgent string
	limiter   *RateLimiter
	http      *http.Client
	logger    *slog.Logger
}

var _ ports.Geocoder = (*NominatimClient)(nil)

// NewNominatimClient wires the search endpoint and the shared limiter.
func NewNominatimClient(endpoint, userAgent string, limiter *RateLimiter, logger *slog.Logger) *NominatimClient {
	if limiter == nil {
		limiter = NewRateLimiter(time.Second)
	}
	return &NominatimClient{
		endpoint:  endpoint,
		userAgent: userAgent,
		limiter:   limiter,
		http:      &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode looks up a place name, taking the first candidate match.
// Results outside the Philippine bounds are discarded.
func (c *NominatimClient) Geocode(ctx context.Context, locationName string) (*domain.Coordinates, error) {
	locationName = strings.TrimSpace(locationName)
	if locationName == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.URL.RawQuery = buildQuery(locationName).Encode()
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("geocoder error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	coords := c.parseResults(results, locationName)
	if coords != nil {
		c.debug("geocoded location", "location", locationName)
	}
	return coords, nil
}

// buildQuery adds a Philippines suffix for precision and constrains the
// search to PH country codes, matching the service's recommended usage.
func buildQuery(locationName string) url.Values {
	query := locationName
	if !strings.Contains(query, "Philippines") {
		query = query + ", Philippines"
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "jsonv2")
	values.Set("limit", "1")
	values.Set("addressdetails", "1")
	values.Set("countrycodes", "ph")
	return values
}

func (c *NominatimClient) parseResults(results []nominatimResult, locationName string) *domain.Coordinates {
	if len(results) == 0 {
		c.debug("no geocoding results", "location", locationName)
		return nil
	}

	best := results[0]
	lat, latErr := strconv.ParseFloat(best.Lat, 64)
	lng, lngErr := strconv.ParseFloat(best.Lon, 64)
	if latErr != nil || lngErr != nil {
		c.warn("unparseable coordinates in geocode response", "location", locationName)
		return nil
	}

	if !geo.WithinPhilippines(lat, lng) {
		c.warn("geocoded coordinates outside Philippine bounds", "location", locationName)
		return nil
	}

	return &domain.Coordinates{Latitude: lat, Longitude: lng}
}

func (c *NominatimClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *NominatimClient) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
