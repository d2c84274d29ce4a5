package topstories

import (
	"fmt"
	"slices"
	"strings"
)

type SortMode string

const (
	SortDefault SortMode = "default"
	SortNewest  SortMode = "newest"
	SortOldest  SortMode = "oldest"
)

var sortModes = []SortMode{SortDefault, SortNewest, SortOldest}

// ParseSortMode accepts default, newest or oldest in any case. An empty
// string is SortDefault.
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortDefault, nil
	}
	for _, m := range sortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q (want default, newest or oldest)", s)
}

// Next cycles default -> newest -> oldest -> default.
func (m SortMode) Next() SortMode {
	i := slices.Index(sortModes, m)
	return sortModes[(i+1)%len(sortModes)]
}

func (m SortMode) Label() string {
	switch m {
	case SortNewest:
		return "newest first"
	case SortOldest:
		return "oldest first"
	default:
		return "as published"
	}
}

// Sort returns a reordered copy of stories. The input is never modified and
// stories with equal publication times keep their relative order.
func Sort(stories []Story, mode SortMode) []Story {
	out := slices.Clone(stories)

	switch mode {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b Story) int {
			return b.PublishedDate.Time.Compare(a.PublishedDate.Time)
		})
	case SortOldest:
		slices.SortStableFunc(out, func(a, b Story) int {
			return a.PublishedDate.Time.Compare(b.PublishedDate.Time)
		})
	}

	return out
}
