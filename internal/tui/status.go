package tui

import (
	"fmt"
	"strings"

	"github.com/pders01/frontpage/internal/topstories"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingStories = "Loading top stories…"
	MsgLoadingArticle = "Loading article…"
	MsgNoResults      = "No results"
	MsgNoStories      = "No stories found for this section."
	MsgNoMedia        = "This story has no media"
	MsgOpened         = "Opened in browser"
	MsgRetryHint      = "retry"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgStoriesLoaded(section string, n int) string {
	label := topstories.SectionLabel(section)
	if n == 1 {
		return fmt.Sprintf("%s: 1 story", label)
	}
	return fmt.Sprintf("%s: %d stories", label, n)
}

func MsgSortChanged(mode topstories.SortMode) string {
	return "Sort: " + mode.Label()
}

func MsgSearchEngine(engine string, docs int) string {
	engine = strings.TrimPrefix(engine, "*search.")
	if docs >= 0 {
		return fmt.Sprintf("Search: %s • idx: %d", engine, docs)
	}
	return "Search: " + engine
}
