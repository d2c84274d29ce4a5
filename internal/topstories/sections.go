package topstories

import "strings"

// DefaultSection is used when no section is requested.
const DefaultSection = "home"

// Section is a news category accepted by the top stories endpoint.
// Feed is the name of the matching RSS feed.
type Section struct {
	Name  string
	Label string
	Feed  string
}

var sections = []Section{
	{Name: "home", Label: "Home", Feed: "HomePage"},
	{Name: "arts", Label: "Arts", Feed: "Arts"},
	{Name: "automobiles", Label: "Automobiles", Feed: "Automobiles"},
	{Name: "books", Label: "Books", Feed: "Books"},
	{Name: "business", Label: "Business", Feed: "Business"},
	{Name: "fashion", Label: "Fashion", Feed: "FashionandStyle"},
	{Name: "food", Label: "Food", Feed: "DiningandWine"},
	{Name: "health", Label: "Health", Feed: "Health"},
	{Name: "insider", Label: "Insider", Feed: "Insider"},
	{Name: "magazine", Label: "Magazine", Feed: "Magazine"},
	{Name: "movies", Label: "Movies", Feed: "Movies"},
	{Name: "nyregion", Label: "NY Region", Feed: "NYRegion"},
	{Name: "obituaries", Label: "Obituaries", Feed: "Obituaries"},
	{Name: "opinion", Label: "Opinion", Feed: "Opinion"},
	{Name: "politics", Label: "Politics", Feed: "Politics"},
	{Name: "realestate", Label: "Real Estate", Feed: "RealEstate"},
	{Name: "science", Label: "Science", Feed: "Science"},
	{Name: "sports", Label: "Sports", Feed: "Sports"},
	{Name: "sundayreview", Label: "Sunday Review", Feed: "SundayReview"},
	{Name: "technology", Label: "Technology", Feed: "Technology"},
	{Name: "theater", Label: "Theater", Feed: "Theater"},
	{Name: "t-magazine", Label: "T Magazine", Feed: "tmagazine"},
	{Name: "travel", Label: "Travel", Feed: "Travel"},
	{Name: "upshot", Label: "Upshot", Feed: "Upshot"},
	{Name: "us", Label: "US", Feed: "US"},
	{Name: "world", Label: "World", Feed: "World"},
}

// Sections returns the known sections in display order.
func Sections() []Section {
	return append([]Section(nil), sections...)
}

// LookupSection finds a known section by name, case-insensitively.
func LookupSection(name string) (Section, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// NormalizeSection trims and lowercases name, substituting DefaultSection
// for an empty value.
func NormalizeSection(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultSection
	}
	return name
}

// SectionLabel returns the display label for name, or name itself when the
// section is unknown.
func SectionLabel(name string) string {
	if s, ok := LookupSection(name); ok {
		return s.Label
	}
	return name
}
