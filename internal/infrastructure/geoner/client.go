package geoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"HazardScanner/internal/domain"
	"HazardScanner/internal/ports"
)

// Client talks to the external geographic NER service. Candidates come
// back ordered so earlier entries are at least as trustworthy as later
// ones.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.LocationExtractor = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type extractResponse struct {
	Locations []struct {
		LocationName string   `json:"location_name"`
		Latitude     *float64 `json:"latitude"`
		Longitude    *float64 `json:"longitude"`
		Confidence   float64  `json:"confidence"`
		Source       string   `json:"source"`
		Province     string   `json:"province"`
		City         string   `json:"city"`
	} `json:"locations"`
}

// ExtractLocations resolves place mentions in the text.
func (c *Client) ExtractLocations(ctx context.Context, text string) ([]domain.ExtractedLocation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/locations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	locations := make([]domain.ExtractedLocation, 0, len(decoded.Locations))
	for _, loc := range decoded.Locations {
		source := loc.Source
		if source == "" {
			source = domain.LocationSourcePattern
		}
		admin := loc.Province
		if admin == "" {
			admin = loc.City
		}
		locations = append(locations, domain.ExtractedLocation{
			Name:          loc.LocationName,
			AdminDivision: admin,
			Latitude:      loc.Latitude,
			Longitude:     loc.Longitude,
			Confidence:    loc.Confidence,
			Source:        source,
		})
	}
	return locations, nil
}
