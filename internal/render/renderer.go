package render

import (
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/pders01/frontpage/internal/config"
)

// Renderer renders Markdown with glamour, keeping one term renderer per
// wrap width. A new one is built only when the width moves by more than
// rebuildThreshold columns.
type Renderer struct {
	mu       sync.Mutex
	tr       *glamour.TermRenderer
	width    int
	minWidth int
	maxWidth int
	style    string
}

const rebuildThreshold = 10

func NewRenderer(cfg config.ArticleConfig) *Renderer {
	r := &Renderer{minWidth: cfg.WordWrapMinWidth, maxWidth: cfg.WordWrapMaxWidth}
	if r.minWidth <= 0 {
		r.minWidth = 40
	}
	if r.maxWidth < r.minWidth {
		r.maxWidth = r.minWidth
	}
	return r
}

// WithStyle selects a fixed glamour style such as "dark" or "notty"
// instead of detecting one from the terminal.
func (r *Renderer) WithStyle(style string) *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.style = style
	r.tr = nil
	return r
}

// WrapWidth returns the word wrap column for a terminal termWidth wide.
func (r *Renderer) WrapWidth(termWidth int) int {
	w := termWidth * 9 / 10
	if w > r.maxWidth {
		w = r.maxWidth
	}
	if w < r.minWidth {
		w = r.minWidth
	}
	if termWidth < r.minWidth+10 {
		w = termWidth - 4
		if w < 20 {
			w = 20
		}
	}
	return w
}

// Render renders markdown for a terminal termWidth columns wide.
func (r *Renderer) Render(markdown string, termWidth int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tr, err := r.termRenderer(r.WrapWidth(termWidth))
	if err != nil {
		return "", err
	}
	return tr.Render(markdown)
}

func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	if r.tr != nil && abs(r.width-width) <= rebuildThreshold {
		return r.tr, nil
	}

	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	r.tr = tr
	r.width = width
	return tr, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
