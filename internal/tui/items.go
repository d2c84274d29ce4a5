package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/frontpage/internal/media"
	"github.com/pders01/frontpage/internal/render"
	"github.com/pders01/frontpage/internal/search"
	"github.com/pders01/frontpage/internal/topstories"
)

type storyItem struct {
	story  topstories.Story
	read   bool
	now    time.Time
	maxLen int
}

func (i storyItem) Title() string {
	title := oneLine(i.story.Title)
	if i.read {
		return ReadItemStyle.Render(title)
	}
	return UnreadItemStyle.Render("● " + title)
}

func (i storyItem) Description() string {
	maxLen := i.maxLen
	if maxLen < 40 {
		maxLen = 40
	}
	desc := truncateEnd(oneLine(i.story.Abstract), maxLen)

	var meta []string
	if rel := render.RelativeTime(i.story.PublishedDate.Time, i.now); rel != "" {
		meta = append(meta, rel)
	}
	if by := render.Byline(i.story.Byline); by != "" {
		meta = append(meta, by)
	}

	out := lipgloss.NewStyle().Foreground(MutedColor).Render(desc)
	if i.story.Kicker != "" {
		out += " " + KickerStyle.Render(strings.ToUpper(i.story.Kicker))
	}
	if len(meta) > 0 {
		out += TimeStyle.Render(" • " + strings.Join(meta, " • "))
	}
	return out
}

func (i storyItem) FilterValue() string {
	return i.story.Title + " " + i.story.Abstract
}

type sectionItem struct {
	section topstories.Section
	current bool
}

func (i sectionItem) Title() string {
	if i.current {
		return SectionStyle.Render("● " + i.section.Label)
	}
	return i.section.Label
}

func (i sectionItem) Description() string {
	return renderMuted(i.section.Name)
}

func (i sectionItem) FilterValue() string {
	return i.section.Label + " " + i.section.Name
}

func sectionItems(current string) []list.Item {
	sections := topstories.Sections()
	items := make([]list.Item, len(sections))
	for i, s := range sections {
		items[i] = sectionItem{section: s, current: s.Name == current}
	}
	return items
}

func sectionIndex(name string) int {
	for i, s := range topstories.Sections() {
		if s.Name == name {
			return i
		}
	}
	return 0
}

type searchResultItem struct {
	story   topstories.Story
	score   float64
	snippet string
	read    bool
}

func newSearchResultItem(r *search.Result, read bool) searchResultItem {
	item := searchResultItem{story: *r.Story, score: r.Score, read: read}
	for _, m := range r.Matches {
		if m.Field != "title" && m.Text != "" {
			item.snippet = m.Text
			break
		}
	}
	return item
}

func (i searchResultItem) Title() string {
	if i.read {
		return ReadItemStyle.Render(oneLine(i.story.Title))
	}
	return UnreadItemStyle.Render("● " + oneLine(i.story.Title))
}

func (i searchResultItem) Description() string {
	desc := i.snippet
	if desc == "" {
		desc = i.story.Abstract
	}
	desc = truncateEnd(oneLine(desc), 60)

	section := topstories.SectionLabel(i.story.Section)
	return lipgloss.NewStyle().
		Foreground(MutedColor).
		Render(desc + " • " + section)
}

func (i searchResultItem) FilterValue() string {
	return i.story.Title + " " + i.story.Abstract
}

type mediaItem struct {
	media     topstories.Media
	mediaType media.Type
	index     int
	total     int
}

func (i mediaItem) Title() string {
	label := fmt.Sprintf("%s %d/%d", i.mediaType, i.index+1, i.total)
	if i.media.Width > 0 && i.media.Height > 0 {
		label += fmt.Sprintf(" (%d×%d)", i.media.Width, i.media.Height)
	}
	if i.media.Format != "" {
		label += " · " + i.media.Format
	}
	return label
}

func (i mediaItem) Description() string {
	desc := truncateMiddle(i.media.URL, 80)
	if c := oneLine(i.media.Caption); c != "" {
		desc = truncateEnd(c, 60) + " • " + desc
	}
	return renderMuted(desc)
}

func (i mediaItem) FilterValue() string { return i.media.URL }
