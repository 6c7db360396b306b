package grader

import (
	"net/url"
	"strings"
)

// IsValidURL reports whether raw is an absolute http or https URL whose host
// contains a dot-separated domain. Endpoints that fail this check are never
// called; schemes other than http/https and bare hosts like "https://example/"
// are rejected.
func IsValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	host := parsed.Hostname()
	if host == "" {
		return false
	}

	return strings.Contains(host, ".")
}
