package storage

import (
	"time"
)

// ReadMark records that a story was opened in the reader.
type ReadMark struct {
	Key     string    `json:"key"`
	Section string    `json:"section"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	ReadAt  time.Time `json:"read_at"`
}

// Preference names.
const (
	PrefLastSection = "last_section"
	PrefSortMode    = "sort_mode"
)
