package feed

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Best-effort SSRF guard: string checks against the well-known private
// ranges, not full IP-range parsing.
var privateHostExpr = regexp.MustCompile(`^(10\.|172\.(1[6-9]|2[0-9]|3[01])\.|192\.168\.)`)

var blockedHosts = []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"}

// ValidateURL rejects feed URLs that could steer fetches into internal
// services: non-http(s) schemes, loopback hosts, private address space.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("empty url")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme %q is not allowed", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("url has no host")
	}

	for _, blocked := range blockedHosts {
		if host == blocked {
			return fmt.Errorf("host %q is blocked", host)
		}
	}

	if privateHostExpr.MatchString(host) {
		return fmt.Errorf("private address %q is blocked", host)
	}

	return nil
}
