package config

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one finding of Validate.
type Issue struct {
	Field    string
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

// Validate checks the loaded configuration. A missing API key is only a
// warning: the app starts, and every fetch through the JSON API fails with a
// configuration error until a key is provided.
func (c *Config) Validate() []Issue {
	var issues []Issue

	add := func(sev Severity, field, format string, args ...any) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: sev})
	}

	switch c.API.Source {
	case SourceAPI:
		if c.API.Key == "" {
			add(SeverityWarning, "api.key", "not set; export %s or add it to .env.local", strings.Join(APIKeyEnvVars, " or "))
		}
		if c.API.BaseURL == "" {
			add(SeverityError, "api.base_url", "must not be empty")
		}
	case SourceRSS:
		if c.API.FeedBaseURL == "" {
			add(SeverityError, "api.feed_base_url", "must not be empty")
		}
	default:
		add(SeverityError, "api.source", "unknown source %q (want %q or %q)", c.API.Source, SourceAPI, SourceRSS)
	}

	if c.API.HTTPTimeout < 0 {
		add(SeverityError, "api.http_timeout", "must not be negative")
	}

	switch strings.ToLower(c.UI.DefaultSort) {
	case "", "default", "newest", "oldest":
	default:
		add(SeverityError, "ui.default_sort", "unknown sort mode %q", c.UI.DefaultSort)
	}

	switch c.UI.FilterEngine {
	case FilterSimple, FilterBleve:
	default:
		add(SeverityError, "ui.filter_engine", "unknown engine %q (want %q or %q)", c.UI.FilterEngine, FilterSimple, FilterBleve)
	}

	switch c.Content.Extractor {
	case ExtractorPlaceholder, ExtractorHTML:
	default:
		add(SeverityError, "content.extractor", "unknown extractor %q (want %q or %q)", c.Content.Extractor, ExtractorPlaceholder, ExtractorHTML)
	}

	if c.Database.Path == "" {
		add(SeverityError, "database.path", "must not be empty")
	}

	return issues
}

// HasErrors reports whether any issue is fatal.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
