package topstories

import (
	"bytes"
	"encoding/json"
	"time"
)

// StatusOK is the status value the upstream API reports for a usable response.
const StatusOK = "OK"

type Story struct {
	Section           string    `json:"section"`
	Subsection        string    `json:"subsection"`
	Title             string    `json:"title"`
	Abstract          string    `json:"abstract"`
	URL               string    `json:"url"`
	URI               string    `json:"uri"`
	Byline            string    `json:"byline"`
	ItemType          string    `json:"item_type"`
	UpdatedDate       Timestamp `json:"updated_date"`
	CreatedDate       Timestamp `json:"created_date"`
	PublishedDate     Timestamp `json:"published_date"`
	MaterialTypeFacet string    `json:"material_type_facet"`
	Kicker            string    `json:"kicker"`
	DesFacet          Facet     `json:"des_facet"`
	OrgFacet          Facet     `json:"org_facet"`
	PerFacet          Facet     `json:"per_facet"`
	GeoFacet          Facet     `json:"geo_facet"`
	Multimedia        []Media   `json:"multimedia"`
	ShortURL          string    `json:"short_url"`
}

type Media struct {
	URL       string `json:"url"`
	Format    string `json:"format"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	Caption   string `json:"caption"`
	Copyright string `json:"copyright"`
}

type FetchResult struct {
	Status      string    `json:"status"`
	Copyright   string    `json:"copyright"`
	Section     string    `json:"section"`
	LastUpdated Timestamp `json:"last_updated"`
	NumResults  int       `json:"num_results"`
	Results     []Story   `json:"results"`
}

// Key identifies a story for read marks. The uri is stable across fetches;
// the url is used when the upstream omits it.
func (s *Story) Key() string {
	if s.URI != "" {
		return s.URI
	}
	return s.URL
}

// LeadImage returns the largest image attached to the story, or nil.
func (s *Story) LeadImage() *Media {
	var best *Media
	for i := range s.Multimedia {
		m := &s.Multimedia[i]
		if m.URL == "" || (m.Type != "" && m.Type != "image") {
			continue
		}
		if best == nil || m.Width*m.Height > best.Width*best.Height {
			best = m
		}
	}
	return best
}

// Facets returns every facet value of the story in a fixed order:
// descriptors, organizations, people, places.
func (s *Story) Facets() []string {
	out := make([]string, 0, len(s.DesFacet)+len(s.OrgFacet)+len(s.PerFacet)+len(s.GeoFacet))
	out = append(out, s.DesFacet...)
	out = append(out, s.OrgFacet...)
	out = append(out, s.PerFacet...)
	out = append(out, s.GeoFacet...)
	return out
}

// Timestamp keeps the upstream text alongside its parsed value so that
// encoding a story reproduces exactly what was received.
type Timestamp struct {
	Raw  string
	Time time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// NewTimestamp builds a Timestamp from a time, formatted as RFC 3339.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{Raw: t.Format(time.RFC3339), Time: t}
}

// ParseTimestamp parses raw with the layouts the upstream has been seen to
// use. The raw text is kept even when no layout matches.
func ParseTimestamp(raw string) Timestamp {
	ts := Timestamp{Raw: raw}
	if raw == "" {
		return ts
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			ts.Time = t
			break
		}
	}
	return ts
}

func (t Timestamp) IsZero() bool { return t.Time.IsZero() }

func (t Timestamp) String() string { return t.Raw }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Raw)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ParseTimestamp(raw)
	return nil
}

// Facet is an unordered set of classification tags. The upstream sends ""
// instead of [] when a facet is empty.
type Facet []string

func (f *Facet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		*f = nil
		return nil
	}
	var values []string
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return err
	}
	*f = values
	return nil
}
