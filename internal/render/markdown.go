// Package render turns stories into the Markdown shown by the reader view
// and renders it for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/pders01/frontpage/internal/content"
	"github.com/pders01/frontpage/internal/topstories"
)

const dateLayout = "Monday, January 2, 2006 at 15:04 MST"

// StoryMarkdown builds the detail page of story. body may be nil while the
// content is still loading; the abstract and metadata are always shown.
func StoryMarkdown(story *topstories.Story, body *content.Content) string {
	if story == nil {
		return "# Article not found\n\nThe story could not be read. Press Esc to go back.\n"
	}

	var b strings.Builder

	if story.Kicker != "" {
		fmt.Fprintf(&b, "**%s**\n\n", strings.ToUpper(story.Kicker))
	}
	fmt.Fprintf(&b, "# %s\n\n", fallback(story.Title, "Untitled"))

	if meta := metaLine(story); meta != "" {
		fmt.Fprintf(&b, "*%s*\n\n", meta)
	}

	if story.Abstract != "" {
		fmt.Fprintf(&b, "> %s\n\n", story.Abstract)
	}

	if img := story.LeadImage(); img != nil {
		caption := strings.TrimSpace(img.Caption)
		if img.Copyright != "" {
			caption = strings.TrimSpace(caption + " " + "(" + img.Copyright + ")")
		}
		if caption != "" {
			fmt.Fprintf(&b, "🖼  %s\n\n", caption)
		}
	}

	b.WriteString("---\n\n")

	switch {
	case body == nil:
		b.WriteString("*Loading article…*\n\n")
	case strings.TrimSpace(body.Markdown) != "":
		b.WriteString(strings.TrimSpace(body.Markdown))
		b.WriteString("\n\n")
	}

	if facets := story.Facets(); len(facets) > 0 {
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "**Topics:** %s\n\n", strings.Join(facets, " · "))
	}

	if info := infoLines(story); len(info) > 0 {
		b.WriteString("## Article info\n\n")
		for _, line := range info {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}

	if story.URL != "" {
		fmt.Fprintf(&b, "[Read full article](%s)\n", story.URL)
	}

	return b.String()
}

func metaLine(story *topstories.Story) string {
	var parts []string
	if !story.PublishedDate.IsZero() {
		parts = append(parts, FormatDate(story.PublishedDate.Time))
	}
	if byline := Byline(story.Byline); byline != "" {
		parts = append(parts, byline)
	}
	if story.Section != "" {
		parts = append(parts, topstories.SectionLabel(story.Section))
	}
	return strings.Join(parts, " · ")
}

func infoLines(story *topstories.Story) []string {
	var lines []string
	if !story.PublishedDate.IsZero() {
		lines = append(lines, "Published: "+FormatDate(story.PublishedDate.Time))
	}
	if !story.UpdatedDate.IsZero() && !story.UpdatedDate.Time.Equal(story.PublishedDate.Time) {
		lines = append(lines, "Updated: "+FormatDate(story.UpdatedDate.Time))
	}
	if story.Section != "" {
		lines = append(lines, "Section: "+topstories.SectionLabel(story.Section))
	}
	if story.Subsection != "" {
		lines = append(lines, "Subsection: "+story.Subsection)
	}
	if story.ShortURL != "" {
		lines = append(lines, "Short link: "+story.ShortURL)
	}
	return lines
}

// Byline strips the leading "By " the upstream puts in front of author names.
func Byline(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && strings.EqualFold(s[:3], "by ") {
		s = strings.TrimSpace(s[3:])
	}
	return s
}

// FormatDate formats t in the local zone for the detail page.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateLayout)
}

// RelativeTime describes t relative to now, e.g. "5 minutes ago". Times
// older than a week fall back to a short date.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < 0:
		return t.Local().Format("Jan 2, 15:04")
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
