package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a Search call.
type Params struct {
	Query string // user's search text

	Genres   []string // filter: must match at least one
	Tags     []string // filter: must match at least one
	Favorite *bool    // filter: exact match when set

	Limit  int
	Offset int

	Highlight bool
}

// DefaultParams returns sensible pagination/highlighting defaults.
func DefaultParams() Params {
	return Params{Limit: 20, Offset: 0, Highlight: true}
}

// Result is the outcome of a Search call.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matched book.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle,omitempty"`
	Author     string            `json:"author,omitempty"`
	Narrator   string            `json:"narrator,omitempty"`
	SeriesName string            `json:"series_name,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search runs a fuzzy, field-boosted query over the book index, with
// optional genre/tag/favorite filters applied as a conjunctive boolean
// query alongside the free-text match.
func (x *Index) Search(params Params) (*Result, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var q query.Query
	text := strings.TrimSpace(params.Query)
	if text == "" {
		q = bleve.NewMatchAllQuery()
	} else {
		mq := bleve.NewMatchQuery(text)
		mq.SetField("title")
		mq.SetBoost(3)

		author := bleve.NewMatchQuery(text)
		author.SetField("author")
		author.SetBoost(2)

		narrator := bleve.NewMatchQuery(text)
		narrator.SetField("narrator")
		narrator.SetBoost(2)

		series := bleve.NewMatchQuery(text)
		series.SetField("series_name")

		subtitle := bleve.NewMatchQuery(text)
		subtitle.SetField("subtitle")

		fuzzy := bleve.NewMatchQuery(text)
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(2)
		fuzzy.SetBoost(0.5)

		q = bleve.NewDisjunctionQuery(mq, author, narrator, series, subtitle, fuzzy)
	}

	if filters := buildFilters(params); filters != nil {
		q = bleve.NewConjunctionQuery(q, filters)
	}

	req := bleve.NewSearchRequestOptions(q, limit, params.Offset, false)
	req.Fields = []string{"title", "subtitle", "author", "narrator", "series_name"}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
	}

	res, err := x.getIndex().Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["subtitle"].(string); ok {
			hit.Subtitle = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["narrator"].(string); ok {
			hit.Narrator = v
		}
		if v, ok := h.Fields["series_name"].(string); ok {
			hit.SeriesName = v
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, frags := range h.Fragments {
				if len(frags) > 0 {
					hit.Highlights[field] = frags[0]
				}
			}
		}
		hits = append(hits, hit)
	}

	return &Result{
		Query:  text,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   hits,
	}, nil
}

func buildFilters(params Params) query.Query {
	var must []query.Query
	for _, g := range params.Genres {
		tq := bleve.NewTermQuery(g)
		tq.SetField("genres")
		must = append(must, tq)
	}
	for _, t := range params.Tags {
		tq := bleve.NewTermQuery(t)
		tq.SetField("tags")
		must = append(must, tq)
	}
	if params.Favorite != nil {
		bq := bleve.NewBoolFieldQuery(*params.Favorite)
		bq.SetField("favorite")
		must = append(must, bq)
	}
	if len(must) == 0 {
		return nil
	}
	return bleve.NewConjunctionQuery(must...)
}
