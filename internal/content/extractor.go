package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"HazardScanner/internal/domain"
)

// Extract normalizes a raw feed entry into clean analyzable text.
// Markup is stripped from summary and body; runs of whitespace collapse to
// single spaces. CombinedText places the title first since it carries the
// strongest classification signal.
func Extract(entry domain.RawEntry) domain.ExtractedContent {
	title := collapseWhitespace(entry.Title)
	description := StripHTML(entry.Summary)
	body := StripHTML(entry.BodyHTML)

	combined := ""
	if title != "" || description != "" || body != "" {
		combined = strings.TrimSpace(fmt.Sprintf("%s. %s %s", title, description, body))
	}

	return domain.ExtractedContent{
		Title:        title,
		Description:  description,
		Body:         body,
		CombinedText: combined,
	}
}

// StripHTML removes all markup and collapses whitespace. Malformed
// fragments are treated as plain text rather than failing the entry.
func StripHTML(htmlText string) string {
	if strings.TrimSpace(htmlText) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return collapseWhitespace(htmlText)
	}

	return collapseWhitespace(doc.Text())
}

// Hash computes the duplicate-detection digest over normalized
// title+description: lowercased, whitespace-collapsed, sha256-hex.
// Stable across re-runs of the same content.
func Hash(c domain.ExtractedContent) string {
	normalized := collapseWhitespace(strings.ToLower(c.Title + c.Description))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
