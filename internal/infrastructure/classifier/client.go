package classifier

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

// Taxonomy is the fixed label set for zero-shot hazard classification.
var Taxonomy = []string{
	"flooding",
	"fire",
	"earthquake",
	"typhoon",
	"landslide",
	"volcanic eruption",
	"drought",
	"tsunami",
	"storm surge",
	"tornado",
}

// Client talks to the external zero-shot classification service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.HazardClassifier = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type classifyResponse struct {
	HazardType string             `json:"hazard_type"`
	Score      float64            `json:"score"`
	Scores     map[string]float64 `json:"all_scores"`
}

// Classify scores the text against the taxonomy. Blank text short-circuits
// to a non-hazard result without touching the service.
func (c *Client) Classify(ctx context.Context, text string, threshold float64) (domain.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ClassificationResult{}, nil
	}

	payload := map[string]any{
		"text":      text,
		"labels":    Taxonomy,
		"threshold": threshold,
	}

	var resp classifyResponse
	if err := c.post(ctx, "/classify", payload, &resp); err != nil {
		return domain.ClassificationResult{}, err
	}

	return domain.ClassificationResult{
		Label:    resp.HazardType,
		Score:    resp.Score,
		IsHazard: resp.HazardType != "" && resp.Score >= threshold,
		Scores:   resp.Scores,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
