// Package content supplies the body text of the detail view. The top
// stories feed only carries summaries, so the text comes from an Extractor
// chosen per URL.
package content

import (
	"context"
	"net/http"
	"time"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/debuglog"
)

// Content is the article body rendered as Markdown.
type Content struct {
	URL      string
	Markdown string
	// Source names the extractor that produced the body
	Source string
	// Placeholder is set when no real text could be obtained
	Placeholder bool
}

// Extractor turns an article URL into readable content.
type Extractor interface {
	Name() string

	// CanHandle returns true if this extractor can handle the given URL
	CanHandle(url string) bool

	// Extract may perform HTTP requests through client.
	Extract(ctx context.Context, url string, client *http.Client) (*Content, error)

	// Priority returns the priority of this extractor (higher = higher priority)
	Priority() int
}

type Registry struct {
	extractors []Extractor
	client     *http.Client
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewDefaultRegistry registers the placeholder and, when content.extractor
// asks for it, the HTML extractor.
func NewDefaultRegistry(cfg *config.Config) *Registry {
	r := NewRegistry(cfg.Content.HTTPTimeout)
	r.Register(NewPlaceholder())
	if cfg.Content.Extractor == config.ExtractorHTML {
		h := NewHTMLExtractor(cfg.API.UserAgent)
		if cfg.Content.AllowPrivateHosts {
			h.AllowPrivateHosts()
		}
		r.Register(h)
	}
	return r
}

func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Find returns the highest priority extractor that can handle url.
func (r *Registry) Find(url string) Extractor {
	var best Extractor
	highest := -1

	for _, e := range r.extractors {
		if e.CanHandle(url) && e.Priority() > highest {
			best = e
			highest = e.Priority()
		}
	}
	return best
}

// Extract returns the content for url. When no extractor applies the
// placeholder is returned; an extractor failure is returned as is so the
// caller can show it next to Unavailable.
func (r *Registry) Extract(ctx context.Context, url string) (*Content, error) {
	e := r.Find(url)
	if e == nil {
		return placeholderContent(url), nil
	}

	log := debuglog.WithFields(map[string]any{"extractor": e.Name(), "url": url})
	c, err := e.Extract(ctx, url, r.client)
	if err != nil {
		log.Warnf("extraction failed: %v", err)
		return nil, err
	}
	log.Debugf("extracted %d bytes", len(c.Markdown))
	return c, nil
}

func (r *Registry) ListExtractors() []Extractor {
	return append([]Extractor(nil), r.extractors...)
}
