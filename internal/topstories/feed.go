package topstories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/debuglog"
)

// FeedClient reads the per-section RSS feeds. It needs no API key and maps
// feed items onto the same Story model as the JSON endpoint.
type FeedClient struct {
	client    *http.Client
	parser    *gofeed.Parser
	baseURL   string
	userAgent string
}

func NewFeedClient(cfg *config.Config) *FeedClient {
	return &FeedClient{
		client: &http.Client{
			Timeout: cfg.API.HTTPTimeout,
		},
		parser:    gofeed.NewParser(),
		baseURL:   strings.TrimRight(cfg.API.FeedBaseURL, "/"),
		userAgent: cfg.API.UserAgent,
	}
}

func (c *FeedClient) TopStories(ctx context.Context, section string) (*FetchResult, error) {
	section = NormalizeSection(section)
	sec, ok := LookupSection(section)
	if !ok {
		return nil, &ConfigError{Setting: "section", Err: fmt.Errorf("no feed for section %q", section)}
	}

	endpoint := c.baseURL + "/" + sec.Feed + ".xml"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, &ParseError{What: "section feed", Err: err}
	}

	result := feedResult(section, feed)
	debuglog.WithFields(map[string]any{"section": section, "source": "rss"}).
		Infof("fetched %d stories", len(result.Results))
	return result, nil
}

func feedResult(section string, feed *gofeed.Feed) *FetchResult {
	result := &FetchResult{
		Status:      StatusOK,
		Copyright:   feed.Copyright,
		Section:     section,
		LastUpdated: feedTimestamp(feed.Updated, feed.UpdatedParsed),
		Results:     make([]Story, 0, len(feed.Items)),
	}
	if result.LastUpdated.IsZero() {
		result.LastUpdated = feedTimestamp(feed.Published, feed.PublishedParsed)
	}

	for _, item := range feed.Items {
		result.Results = append(result.Results, storyFromItem(section, item))
	}
	result.NumResults = len(result.Results)
	return result
}

func storyFromItem(section string, item *gofeed.Item) Story {
	story := Story{
		Section:       section,
		Title:         strings.TrimSpace(item.Title),
		Abstract:      strings.TrimSpace(item.Description),
		URL:           item.Link,
		URI:           item.GUID,
		Byline:        itemByline(item),
		ItemType:      "Article",
		PublishedDate: feedTimestamp(item.Published, item.PublishedParsed),
		UpdatedDate:   feedTimestamp(item.Updated, item.UpdatedParsed),
		Multimedia:    itemMedia(item),
	}
	if len(item.Categories) > 0 {
		story.DesFacet = append(Facet(nil), item.Categories...)
	}
	return story
}

// feedTimestamp keeps the feed's date text when ParseTimestamp reads it
// back to the same instant. Otherwise the text is replaced with RFC 3339
// so an encoded story decodes to the time the feed parser saw.
func feedTimestamp(raw string, parsed *time.Time) Timestamp {
	if parsed == nil {
		return ParseTimestamp(raw)
	}
	if ts := ParseTimestamp(raw); ts.Time.Equal(*parsed) {
		return ts
	}
	return NewTimestamp(*parsed)
}

func itemByline(item *gofeed.Item) string {
	var names []string
	if item.DublinCoreExt != nil {
		names = append(names, item.DublinCoreExt.Creator...)
	}
	if len(names) == 0 {
		for _, a := range item.Authors {
			if a != nil && a.Name != "" {
				names = append(names, a.Name)
			}
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "By " + strings.Join(names, " and ")
}

func itemMedia(item *gofeed.Item) []Media {
	var media []Media

	if exts, ok := item.Extensions["media"]; ok {
		caption := firstExtValue(exts["description"])
		credit := firstExtValue(exts["credit"])
		for _, c := range exts["content"] {
			if c.Attrs["url"] == "" {
				continue
			}
			media = append(media, Media{
				URL:       c.Attrs["url"],
				Width:     atoi(c.Attrs["width"]),
				Height:    atoi(c.Attrs["height"]),
				Type:      c.Attrs["medium"],
				Caption:   caption,
				Copyright: credit,
			})
		}
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" || !strings.HasPrefix(enc.Type, "image/") {
			continue
		}
		media = append(media, Media{
			URL:    enc.URL,
			Type:   "image",
			Format: strings.TrimPrefix(enc.Type, "image/"),
		})
	}

	if len(media) == 0 && item.Image != nil && item.Image.URL != "" {
		media = append(media, Media{URL: item.Image.URL, Type: "image", Caption: item.Image.Title})
	}

	return media
}

func firstExtValue(exts []ext.Extension) string {
	for _, e := range exts {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
