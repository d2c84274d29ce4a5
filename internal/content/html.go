package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/pders01/frontpage/internal/topstories"
	"github.com/pders01/frontpage/internal/validation"
)

const (
	maxPageSize  = 8 << 20
	maxRedirects = 10
)

// Article bodies are looked up in this order; the first non-empty match wins.
var bodySelectors = []string{
	`section[name="articleBody"]`,
	"article",
	`[itemprop="articleBody"]`,
	"main",
	"body",
}

var noiseSelectors = "script, style, noscript, nav, aside, footer, header, form, button, iframe, svg"

// HTMLExtractor downloads the article page and converts its main body to
// Markdown.
type HTMLExtractor struct {
	userAgent string
	validator *validation.LinkValidator
}

func NewHTMLExtractor(userAgent string) *HTMLExtractor {
	return &HTMLExtractor{userAgent: userAgent, validator: validation.NewLinkValidator()}
}

// AllowPrivateHosts lifts the restriction on loopback and private addresses.
func (h *HTMLExtractor) AllowPrivateHosts() *HTMLExtractor {
	h.validator = validation.NewPermissiveLinkValidator()
	return h
}

func (h *HTMLExtractor) Name() string { return "html" }

// CanHandle accepts public http and https links only.
func (h *HTMLExtractor) CanHandle(url string) bool {
	_, err := h.validator.Validate(url)
	return err == nil
}

func (h *HTMLExtractor) Priority() int { return 10 }

func (h *HTMLExtractor) Extract(ctx context.Context, url string, client *http.Client) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.guard(client).Do(req)
	if err != nil {
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &topstories.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &topstories.TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	md, err := htmlToMarkdown(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(md) == "" {
		return nil, &topstories.ParseError{What: "article page", Err: errors.New("no article body found")}
	}

	return &Content{URL: url, Markdown: md, Source: h.Name()}, nil
}

// guard returns a copy of client that runs every redirect target through
// the link validator before following it.
func (h *HTMLExtractor) guard(client *http.Client) *http.Client {
	c := *client
	next := client.CheckRedirect
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if _, err := h.validator.Validate(req.URL.String()); err != nil {
			return fmt.Errorf("redirect to %s refused: %w", req.URL.Host, err)
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
	return &c
}

func htmlToMarkdown(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", &topstories.ParseError{What: "article page", Err: err}
	}

	body := articleBody(doc)
	if body == nil {
		return "", nil
	}
	body.Find(noiseSelectors).Remove()

	html, err := body.Html()
	if err != nil {
		return "", &topstories.ParseError{What: "article page", Err: err}
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", &topstories.ParseError{What: "article page", Err: err}
	}
	return strings.TrimSpace(md), nil
}

func articleBody(doc *goquery.Document) *goquery.Selection {
	for _, sel := range bodySelectors {
		s := doc.Find(sel).First()
		if s.Length() > 0 && strings.TrimSpace(s.Text()) != "" {
			return s
		}
	}
	return nil
}
