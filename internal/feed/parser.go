package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"HazardScanner/internal/domain"
)

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Encoded     string `xml:"encoded"`
	PubDate     string `xml:"pubDate"`
}

type atomDocument struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// pubDateFormats covers the date styles seen across Philippine news feeds.
var pubDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse decodes an RSS 2.0 or Atom document into raw entries. Items that
// cannot be decoded individually are dropped rather than failing the feed.
func Parse(raw []byte) ([]domain.RawEntry, error) {
	rootName, err := rootElement(raw)
	if err != nil {
		return nil, err
	}

	switch rootName {
	case "feed":
		return parseAtom(raw)
	default:
		return parseRSS(raw)
	}
}

func rootElement(raw []byte) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(raw)))
	decoder.Strict = false
	for {
		token, err := decoder.Token()
		if err != nil {
			return "", fmt.Errorf("no xml root element: %w", err)
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func parseRSS(raw []byte) ([]domain.RawEntry, error) {
	var doc rssDocument
	if err := tolerantUnmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode rss: %w", err)
	}

	entries := make([]domain.RawEntry, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		entries = append(entries, domain.RawEntry{
			Title:       strings.TrimSpace(item.Title),
			Summary:     item.Description,
			BodyHTML:    item.Encoded,
			Link:        strings.TrimSpace(item.Link),
			PublishedAt: parsePubDate(item.PubDate),
		})
	}
	return entries, nil
}

func parseAtom(raw []byte) ([]domain.RawEntry, error) {
	var doc atomDocument
	if err := tolerantUnmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode atom: %w", err)
	}

	entries := make([]domain.RawEntry, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		published := entry.Published
		if published == "" {
			published = entry.Updated
		}
		entries = append(entries, domain.RawEntry{
			Title:       strings.TrimSpace(entry.Title),
			Summary:     entry.Summary,
			BodyHTML:    entry.Content,
			Link:        atomEntryLink(entry),
			PublishedAt: parsePubDate(published),
		})
	}
	return entries, nil
}

func atomEntryLink(entry atomEntry) string {
	for _, link := range entry.Links {
		if link.Rel == "" || link.Rel == "alternate" {
			return strings.TrimSpace(link.Href)
		}
	}
	if len(entry.Links) > 0 {
		return strings.TrimSpace(entry.Links[0].Href)
	}
	return ""
}

func tolerantUnmarshal(raw []byte, v any) error {
	decoder := xml.NewDecoder(strings.NewReader(string(raw)))
	decoder.Strict = false
	return decoder.Decode(v)
}

func parsePubDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range pubDateFormats {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
