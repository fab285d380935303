package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter() *RateLimiter {
	limiter := NewRateLimiter(time.Second)
	limiter.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return limiter
}

func TestGeocode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("q"); got != "Marikina, Philippines" {
			t.Errorf("unexpected query: %q", got)
		}
		if q.Get("format") != "jsonv2" || q.Get("countrycodes") != "ph" || q.Get("limit") != "1" {
			t.Errorf("unexpected params: %v", q)
		}
		if ua := r.Header.Get("User-Agent"); ua != "hazard-scanner-test/1.0" {
			t.Errorf("unexpected user agent: %q", ua)
		}
		_, _ = w.Write([]byte(`[{"lat": "14.6507", "lon": "121.1029"}]`))
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL, "hazard-scanner-test/1.0", newTestLimiter(), nil)

	coords, err := client.Geocode(context.Background(), "Marikina")
	if err != nil {
		t.Fatalf("Geocode error: %v", err)
	}
	if coords == nil {
		t.Fatalf("expected coordinates")
	}
	if coords.Latitude != 14.6507 || coords.Longitude != 121.1029 {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}
}

func TestGeocodeKeepsExistingCountrySuffix(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Cebu City, Philippines" {
			t.Errorf("suffix duplicated: %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL, "ua", newTestLimiter(), nil)

	coords, err := client.Geocode(context.Background(), "Cebu City, Philippines")
	if err != nil {
		t.Fatalf("Geocode error: %v", err)
	}
	if coords != nil {
		t.Fatalf("expected nil for empty result set, got %+v", coords)
	}
}

func TestGeocodeRejectsOutOfBounds(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Tokyo: outside the Philippine box.
		_, _ = w.Write([]byte(`[{"lat": "35.6762", "lon": "139.6503"}]`))
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL, "ua", newTestLimiter(), nil)

	coords, err := client.Geocode(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("Geocode error: %v", err)
	}
	if coords != nil {
		t.Fatalf("out-of-bounds result must be discarded, got %+v", coords)
	}
}

func TestGeocodeUnparseableCoordinates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat": "north", "lon": "east"}]`))
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL, "ua", newTestLimiter(), nil)

	coords, err := client.Geocode(context.Background(), "Somewhere")
	if err != nil {
		t.Fatalf("Geocode error: %v", err)
	}
	if coords != nil {
		t.Fatalf("unparseable coordinates must be discarded, got %+v", coords)
	}
}

func TestGeocodeBlankName(t *testing.T) {
	t.Parallel()

	client := NewNominatimClient("http://unused", "ua", newTestLimiter(), nil)

	coords, err := client.Geocode(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Geocode error: %v", err)
	}
	if coords != nil {
		t.Fatalf("blank name must not geocode")
	}
}

func TestGeocodeServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL, "ua", newTestLimiter(), nil)

	if _, err := client.Geocode(context.Background(), "Manila"); err == nil {
		t.Fatalf("expected error for 429 response")
	}
}
