package content

import (
	"context"
	"fmt"
	"net/http"
)

// Placeholder stands in for a real extractor. It handles every URL at the
// lowest priority and explains where the full text can be read.
type Placeholder struct{}

func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

func (p *Placeholder) Name() string { return "placeholder" }

func (p *Placeholder) CanHandle(string) bool { return true }

func (p *Placeholder) Priority() int { return 0 }

func (p *Placeholder) Extract(_ context.Context, url string, _ *http.Client) (*Content, error) {
	return placeholderContent(url), nil
}

func placeholderContent(url string) *Content {
	md := "_The full text of this article is not available here._ The top stories feed only carries " +
		"summaries. Set `content.extractor = \"html\"` in the config to convert the original page, " +
		"or open it in your browser.\n"
	if url != "" {
		md += fmt.Sprintf("\n**Article URL:** <%s>\n", url)
	}
	return &Content{URL: url, Markdown: md, Source: "placeholder", Placeholder: true}
}

// Unavailable is shown when an extractor failed for url.
func Unavailable(url string, err error) *Content {
	md := "_Unable to load the article content._ Please visit the original article.\n"
	if err != nil {
		md += fmt.Sprintf("\n> %v\n", err)
	}
	if url != "" {
		md += fmt.Sprintf("\n**Article URL:** <%s>\n", url)
	}
	return &Content{URL: url, Markdown: md, Source: "unavailable", Placeholder: true}
}
