package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/pders01/frontpage/internal/topstories"
)

// Result is a story that matched a query. Index is its position in the
// slice last passed to Index.
type Result struct {
	Story   *topstories.Story
	Index   int
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "abstract", "byline", "kicker", "facets"
	Text   string // matched text snippet
	Weight float64
}

type fieldWeight struct {
	name   string
	weight float64
	text   func(s *topstories.Story) string
}

var storyFields = []fieldWeight{
	{"title", 4.0, func(s *topstories.Story) string { return s.Title }},
	{"abstract", 2.0, func(s *topstories.Story) string { return s.Abstract }},
	{"facets", 1.5, func(s *topstories.Story) string { return strings.Join(s.Facets(), ", ") }},
	{"kicker", 1.0, func(s *topstories.Story) string { return s.Kicker }},
	{"byline", 0.8, func(s *topstories.Story) string { return s.Byline }},
}

// Engine scores stories in memory without building an index.
type Engine struct {
	mu      sync.RWMutex
	stories []topstories.Story
	now     func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

func (e *Engine) Index(stories []topstories.Story) error {
	e.mu.Lock()
	e.stories = append([]topstories.Story(nil), stories...)
	e.mu.Unlock()
	return nil
}

func (e *Engine) DocCount() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.stories), nil
}

// Search returns matching stories by descending score. Equal scores keep
// the indexed order.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var results []*Result
	for i := range e.stories {
		if result := e.scoreStory(&e.stories[i], terms); result != nil {
			result.Index = i
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (e *Engine) scoreStory(story *topstories.Story, terms []string) *Result {
	var matches []Match
	var totalScore float64

	for _, f := range storyFields {
		text := f.text(story)
		score := scoreField(text, terms, f.weight)
		if score <= 0 {
			continue
		}
		if f.name == "abstract" {
			text = findBestSnippet(text, terms, 150)
		}
		matches = append(matches, Match{Field: f.name, Text: text, Weight: score})
		totalScore += score
	}

	if totalScore <= 0 {
		return nil
	}

	if !story.PublishedDate.IsZero() {
		totalScore *= 1.0 + recencyBoost(story.PublishedDate.Time, e.now())
	}

	return &Result{Story: story, Score: totalScore, Matches: matches}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// findBestSnippet finds the most relevant text snippet containing search terms
func findBestSnippet(text string, terms []string, maxLength int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8
	if windowSize < 1 || windowSize >= len(words) {
		return truncate(text, maxLength)
	}

	bestScore := 0
	bestStart := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		window := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0
		for _, term := range terms {
			if strings.Contains(window, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	// Open the snippet on the first matching word so truncation keeps it.
	start := bestStart
	for i := bestStart; i < bestStart+windowSize; i++ {
		if containsAny(strings.ToLower(words[i]), terms) {
			start = i
			break
		}
	}
	end := min(start+windowSize, len(words))

	return truncate(strings.Join(words[start:end], " "), maxLength)
}

func containsAny(word string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(word, term) {
			return true
		}
	}
	return false
}

// tokenize lowercases text and splits it into terms of two or more
// letters or digits.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}

// truncate limits text to maxLen runes with an ellipsis
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen < 1 {
		return ""
	}
	return string(runes[:maxLen-1]) + "…"
}

// recencyBoost favours stories from the last day, fading to nothing over a
// week. The boost is at most 10%.
func recencyBoost(published, now time.Time) float64 {
	age := now.Sub(published)
	switch {
	case age < 0:
		return 0.1
	case age >= 7*24*time.Hour:
		return 0
	case age <= 24*time.Hour:
		return 0.1
	default:
		return 0.1 * (1 - float64(age-24*time.Hour)/float64(6*24*time.Hour))
	}
}
