package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/pders01/frontpage/internal/topstories"
)

// bleveEngine keeps an in-memory index of the stories on screen. Nothing
// touches the disk.
type bleveEngine struct {
	mu      sync.RWMutex
	idx     bleve.Index
	stories []topstories.Story
	scorer  *Engine
}

func NewBleveEngine() (Searcher, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &bleveEngine{idx: idx, scorer: NewEngine()}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.IncludeTermVectors = true

	text := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = false
		fm.IncludeTermVectors = false
		return fm
	}

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("abstract", text())
	dm.AddFieldMappingsAt("facets", text())
	dm.AddFieldMappingsAt("kicker", text())
	dm.AddFieldMappingsAt("byline", text())

	im.DefaultMapping = dm
	return im
}

// Index swaps in a fresh index holding stories.
func (b *bleveEngine) Index(stories []topstories.Story) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	batch := idx.NewBatch()
	for i := range stories {
		s := &stories[i]
		if err := batch.Index(docID(i), map[string]any{
			"title":    s.Title,
			"abstract": s.Abstract,
			"facets":   strings.Join(s.Facets(), " "),
			"kicker":   s.Kicker,
			"byline":   s.Byline,
		}); err != nil {
			idx.Close()
			return fmt.Errorf("indexing story %d: %w", i, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return fmt.Errorf("indexing stories: %w", err)
	}

	copied := append([]topstories.Story(nil), stories...)
	if err := b.scorer.Index(copied); err != nil {
		idx.Close()
		return err
	}

	b.mu.Lock()
	old := b.idx
	b.idx = idx
	b.stories = copied
	b.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (b *bleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	boosts := []struct {
		field  string
		match  float64
		prefix float64
	}{
		{"title", 4.0, 3.5},
		{"abstract", 2.0, 1.8},
		{"facets", 1.5, 1.2},
		{"kicker", 1.0, 0.8},
		{"byline", 0.8, 0.5},
	}

	var qs []bleveQuery.Query
	for _, tok := range tokens {
		for _, f := range boosts {
			qm := bleve.NewMatchQuery(tok)
			qm.SetField(f.field)
			qm.SetBoost(f.match)
			qs = append(qs, qm)

			qp := bleve.NewPrefixQuery(tok)
			qp.SetField(f.field)
			qp.SetBoost(f.prefix)
			qs = append(qs, qp)
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		i, err := strconv.Atoi(strings.TrimPrefix(h.ID, "story:"))
		if err != nil || i < 0 || i >= len(b.stories) {
			continue
		}
		story := &b.stories[i]
		r := &Result{Story: story, Index: i, Score: h.Score}
		if scored := b.scorer.scoreStory(story, tokens); scored != nil {
			r.Matches = scored.Matches
		}
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, err := b.idx.DocCount()
	return int(n), err
}

func docID(i int) string { return "story:" + strconv.Itoa(i) }
