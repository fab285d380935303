package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"HazardScanner/internal/domain"
	"HazardScanner/internal/ports"
)

const (
	maxFeedBytes = 4 << 20
	userAgent    = "hazard-scanner/1.0"
)

// Fetcher downloads and parses RSS/Atom feeds into raw entries.
type Fetcher struct {
	client *http.Client
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets a 20s-timeout default.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads the feed document and parses it. Callers gate feed URLs
// through ValidateURL before handing them here.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]domain.RawEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	entries, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return entries, nil
}
