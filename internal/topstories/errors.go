package topstories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is wrapped by the ConfigError returned when a fetch is
// attempted without a configured key.
var ErrMissingAPIKey = errors.New("api key is not configured")

// ConfigError reports a fetch that was refused before any network call.
type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Setting, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError reports a failed network call or a non-success HTTP status.
// StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIStatusError reports a response that parsed but carried a status other
// than StatusOK.
type APIStatusError struct {
	Status string
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("API error: %s", e.Status)
}

// ParseError reports malformed JSON, either from the upstream or from a
// serialized story.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Describe returns a short message suitable for the status line.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		cfgErr    *ConfigError
		tErr      *TransportError
		statusErr *APIStatusError
		pErr      *ParseError
	)
	switch {
	case errors.As(err, &cfgErr):
		if errors.Is(cfgErr, ErrMissingAPIKey) {
			return "API key is not configured (set NYT_API_KEY)"
		}
		return cfgErr.Error()
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &tErr):
		return tErr.Error()
	case errors.As(err, &statusErr):
		return statusErr.Error()
	case errors.As(err, &pErr):
		return pErr.Error()
	default:
		return err.Error()
	}
}
