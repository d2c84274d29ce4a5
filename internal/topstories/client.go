package topstories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/debuglog"
	"github.com/pders01/frontpage/internal/validation"
)

// maxBodySize bounds how much of a response is read. A full top stories
// payload is well under a megabyte.
const maxBodySize = 16 << 20

// Source produces the top stories of a section.
type Source interface {
	TopStories(ctx context.Context, section string) (*FetchResult, error)
}

// NewSource returns the source selected by cfg.API.Source.
func NewSource(cfg *config.Config) Source {
	if cfg.API.Source == config.SourceRSS {
		return NewFeedClient(cfg)
	}
	return NewClient(cfg)
}

// Client talks to the top stories JSON endpoint.
type Client struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	userAgent string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.API.HTTPTimeout,
		},
		baseURL:   strings.TrimRight(cfg.API.BaseURL, "/"),
		apiKey:    cfg.API.Key,
		userAgent: cfg.API.UserAgent,
	}
}

// TopStories fetches the stories of section. A missing key fails before any
// request is made.
func (c *Client) TopStories(ctx context.Context, section string) (*FetchResult, error) {
	section = NormalizeSection(section)

	if c.apiKey == "" {
		return nil, &ConfigError{Setting: "api.key", Err: ErrMissingAPIKey}
	}
	if err := validation.ValidateSection(section); err != nil {
		return nil, &ConfigError{Setting: "section", Err: err}
	}

	endpoint := c.endpoint(section)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?api-key="+url.QueryEscape(c.apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := debuglog.WithFields(map[string]any{"section": section})
	log.Debugf("fetching top stories")

	resp, err := c.client.Do(req)
	if err != nil {
		// *url.Error embeds the request URL, which carries the key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		log.Warnf("request failed: %v", err)
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warnf("unexpected status %d", resp.StatusCode)
		return nil, &TransportError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("reading response: %w", err)}
	}

	var result FetchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ParseError{What: "top stories response", Err: err}
	}

	if result.Status != StatusOK {
		log.Warnf("api status %q", result.Status)
		return nil, &APIStatusError{Status: result.Status}
	}

	log.Infof("fetched %d stories", len(result.Results))
	return &result, nil
}

func (c *Client) endpoint(section string) string {
	return c.baseURL + "/" + url.PathEscape(section) + ".json"
}
