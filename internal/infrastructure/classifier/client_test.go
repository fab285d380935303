package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", auth)
		}

		var payload struct {
			Text      string   `json:"text"`
			Labels    []string `json:"labels"`
			Threshold float64  `json:"threshold"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(payload.Labels) != len(Taxonomy) {
			t.Errorf("expected %d labels, got %d", len(Taxonomy), len(payload.Labels))
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"hazard_type": "flooding",
			"score":       0.91,
			"all_scores":  map[string]float64{"flooding": 0.91, "typhoon": 0.04},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")

	result, err := client.Classify(context.Background(), "Heavy flooding in Metro Manila, streets submerged", 0.5)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}

	if !result.IsHazard {
		t.Fatalf("expected hazard classification")
	}
	if result.Label != "flooding" {
		t.Fatalf("unexpected label: %q", result.Label)
	}
	if result.Score <= 0.5 {
		t.Fatalf("unexpected score: %f", result.Score)
	}
	if result.Scores["flooding"] != 0.91 {
		t.Fatalf("score map not populated: %v", result.Scores)
	}
}

func TestClassifyBelowThreshold(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hazard_type": "drought",
			"score":       0.31,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	result, err := client.Classify(context.Background(), "Sunny day across the region", 0.5)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if result.IsHazard {
		t.Fatalf("score below threshold must not be a hazard")
	}
}

func TestClassifyEmptyText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("service must not be called for empty text")
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	result, err := client.Classify(context.Background(), "   ", 0.5)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if result.IsHazard || result.Label != "" || result.Score != 0 {
		t.Fatalf("expected zero result for empty text, got %+v", result)
	}
}

func TestClassifyServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	if _, err := client.Classify(context.Background(), "some text", 0.5); err == nil {
		t.Fatalf("expected error for 503 response")
	}
}
