package content

import (
	"strings"
	"testing"

	"HazardScanner/internal/domain"
)

func TestExtractStripsMarkup(t *testing.T) {
	t.Parallel()

	entry := domain.RawEntry{
		Title:    "Flood hits   Marikina",
		Summary:  "<p>Heavy rains caused <b>severe flooding</b> along the river.</p>",
		BodyHTML: "<div>Residents   were <a href='#'>evacuated</a>.</div>",
	}

	extracted := Extract(entry)

	if extracted.Title != "Flood hits Marikina" {
		t.Fatalf("unexpected title: %q", extracted.Title)
	}
	if extracted.Description != "Heavy rains caused severe flooding along the river." {
		t.Fatalf("unexpected description: %q", extracted.Description)
	}
	if extracted.Body != "Residents were evacuated." {
		t.Fatalf("unexpected body: %q", extracted.Body)
	}

	want := "Flood hits Marikina. Heavy rains caused severe flooding along the river. Residents were evacuated."
	if extracted.CombinedText != want {
		t.Fatalf("unexpected combined text: %q", extracted.CombinedText)
	}
}

func TestExtractMalformedHTML(t *testing.T) {
	t.Parallel()

	extracted := Extract(domain.RawEntry{
		Title:   "Quake report",
		Summary: "<p>Magnitude 5.2 <b>earthquake <i>struck",
	})

	if !strings.Contains(extracted.Description, "Magnitude 5.2 earthquake struck") {
		t.Fatalf("malformed markup not treated as text: %q", extracted.Description)
	}
}

func TestExtractEmptyEntry(t *testing.T) {
	t.Parallel()

	extracted := Extract(domain.RawEntry{})
	if extracted.CombinedText != "" {
		t.Fatalf("expected empty combined text, got %q", extracted.CombinedText)
	}
}

func TestHashNormalization(t *testing.T) {
	t.Parallel()

	a := Hash(domain.ExtractedContent{Title: "Flood in Manila"})
	b := Hash(domain.ExtractedContent{Title: "flood   in manila"})
	if a != b {
		t.Fatalf("hash not case/whitespace stable: %s vs %s", a, b)
	}

	c := Hash(domain.ExtractedContent{Title: "Flood in Cebu"})
	if a == c {
		t.Fatalf("different content produced the same hash")
	}

	if len(a) != 64 {
		t.Fatalf("expected 64-char sha256 hex, got %d chars", len(a))
	}
}

func TestHashDeterministic(t *testing.T) {
	t.Parallel()

	content := domain.ExtractedContent{Title: "Typhoon approaching", Description: "Signal no. 3 raised"}
	if Hash(content) != Hash(content) {
		t.Fatalf("hash not deterministic across calls")
	}
}
