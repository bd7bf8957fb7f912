package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping builds the Bleve mapping for book documents: English
// stemming on free-text fields (title, author, narrator, series, description)
// for fuzzy/typo-tolerant matching, keyword analyzers on fields filtered by
// exact value (genres, tags, language), and stored numeric fields for range
// queries and sorting. This complements rather than replaces SQLite FTS5,
// which backs exact catalog-internal lookups; this index exists for the
// control surface's fuzzy search.
func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true
	doc.AddFieldMappingsAt("title", title)

	subtitle := bleve.NewTextFieldMapping()
	subtitle.Analyzer = en.AnalyzerName
	subtitle.Store = true
	doc.AddFieldMappingsAt("subtitle", subtitle)

	author := bleve.NewTextFieldMapping()
	author.Analyzer = en.AnalyzerName
	author.Store = true
	author.IncludeTermVectors = true
	doc.AddFieldMappingsAt("author", author)

	narrator := bleve.NewTextFieldMapping()
	narrator.Analyzer = en.AnalyzerName
	narrator.Store = true
	narrator.IncludeTermVectors = true
	doc.AddFieldMappingsAt("narrator", narrator)

	seriesName := bleve.NewTextFieldMapping()
	seriesName.Analyzer = en.AnalyzerName
	seriesName.Store = true
	doc.AddFieldMappingsAt("series_name", seriesName)

	description := bleve.NewTextFieldMapping()
	description.Analyzer = en.AnalyzerName
	description.Store = false
	doc.AddFieldMappingsAt("description", description)

	publisher := bleve.NewTextFieldMapping()
	publisher.Analyzer = en.AnalyzerName
	publisher.Store = true
	doc.AddFieldMappingsAt("publisher", publisher)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("id", id)

	language := bleve.NewTextFieldMapping()
	language.Analyzer = keyword.Name
	language.Store = true
	doc.AddFieldMappingsAt("language", language)

	genres := bleve.NewTextFieldMapping()
	genres.Analyzer = keyword.Name
	genres.Store = true
	genres.IncludeTermVectors = true
	doc.AddFieldMappingsAt("genres", genres)

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = keyword.Name
	tags.Store = true
	tags.IncludeTermVectors = true
	doc.AddFieldMappingsAt("tags", tags)

	seriesID := bleve.NewTextFieldMapping()
	seriesID.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("series_id", seriesID)

	duration := bleve.NewNumericFieldMapping()
	duration.Store = true
	doc.AddFieldMappingsAt("duration_ms", duration)

	createdAt := bleve.NewNumericFieldMapping()
	createdAt.Store = true
	doc.AddFieldMappingsAt("created_at", createdAt)

	updatedAt := bleve.NewNumericFieldMapping()
	updatedAt.Store = true
	doc.AddFieldMappingsAt("updated_at", updatedAt)

	favorite := bleve.NewBooleanFieldMapping()
	favorite.Store = true
	doc.AddFieldMappingsAt("favorite", favorite)

	im.AddDocumentMapping("_default", doc)
	return im
}
