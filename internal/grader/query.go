package grader

import (
	"net/url"
	"strings"
)

// BuildQuery assembles the identification query for a GET-style grader call.
// Merge order is fixed: the user identifier parameter first, then the activity
// pair when both name and value are set, then the authored extra parameters.
// Extra parameters never override a key already set by the identifier or
// activity logic (first-wins); a segment without "=" is dropped.
func BuildQuery(cfg Config, identity Identity) url.Values {
	values := url.Values{}

	if cfg.UserIdentifierParameter != "" {
		values.Set(cfg.UserIdentifierParameter, identity.Value(cfg.UserIdentifier))
	}

	if cfg.ActivityIdentifierParameter != "" && cfg.ActivityIdentifier != "" {
		values.Set(cfg.ActivityIdentifierParameter, cfg.ActivityIdentifier)
	}

	if cfg.ExtraParams == "" {
		return values
	}

	for _, segment := range strings.Split(cfg.ExtraParams, "&") {
		key, value, found := strings.Cut(segment, "=")
		if !found || key == "" {
			continue
		}
		if values.Has(key) {
			continue
		}
		values.Set(key, value)
	}

	return values
}
