package search

import (
	"fmt"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/topstories"
)

// Searcher filters the stories currently on screen. Index replaces whatever
// was indexed before.
type Searcher interface {
	Index(stories []topstories.Story) error
	Search(query string, limit int) ([]*Result, error)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// New returns the searcher selected by ui.filter_engine.
func New(engine string) (Searcher, error) {
	switch engine {
	case "", config.FilterSimple:
		return NewEngine(), nil
	case config.FilterBleve:
		return NewBleveEngine()
	default:
		return nil, fmt.Errorf("unknown filter engine %q", engine)
	}
}
