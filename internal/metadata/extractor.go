package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/simonhull/audiometa"

	"github.com/DrTomLLC/StoryStream/internal/normalize"
)

// taggedExtensions are the formats simonhull/audiometa parses natively.
var taggedExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".m4b":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

// SupportedExtensions is the full audio extension set from spec.md §4.1,
// combining audiometa's tagged dialects with the generic container probe's
// wav/aiff support and the remaining extensions accepted as filename-stem
// fallbacks. Callers building a scanner.Config or classifying files should
// use this rather than hand-rolling their own list.
var SupportedExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".m4b":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".aac":  true,
	".wma":  true,
	".wav":  true,
	".aiff": true,
	".aif":  true,
	".ape":  true,
	".wv":   true,
}

// Extractor pulls tags, audio properties, chapters, and cover art out of a
// single audio file. It is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor returns a ready-to-use Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads path and returns its metadata. The dispatch is purely by
// extension: tagged formats go through audiometa, everything else falls
// back to the generic container probe.
func (e *Extractor) Extract(ctx context.Context, path string) (*ExtractedMetadata, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if taggedExtensions[ext] {
		return e.extractTagged(ctx, path)
	}
	return extractGeneric(path, ext)
}

func (e *Extractor) extractTagged(ctx context.Context, path string) (*ExtractedMetadata, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("metadata: open %s: %w", path, err)
	}
	defer file.Close()

	tags := file.Tags
	audio := file.Audio

	author := tags.AlbumArtist
	if author == "" {
		author = tags.Artist
	}

	md := &ExtractedMetadata{
		Title:       tags.Title,
		Subtitle:    tags.Subtitle,
		Author:      author,
		Narrator:    tags.Narrator,
		Series:      tags.Series,
		SeriesPart:  InferSeriesPosition(file),
		Publisher:   tags.Publisher,
		ISBN:        tags.ISBN,
		ASIN:        tags.ASIN,
		Description: tags.Comment,
		Language:    normalize.LanguageCode(tags.GetBest("LANGUAGE", "language", "©lang")),
		Genres:      normalizeGenres(tags.Genres),
		Year:        tags.Year,
		TrackNumber: tags.TrackNumber,
		TrackTotal:  tags.TrackTotal,

		Duration:   audio.Duration,
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
		BitDepth:   audio.BitDepth,
		Bitrate:    audio.Bitrate,
		Codec:      audio.Codec,
		Lossless:   audio.Lossless,
	}

	for _, ch := range file.Chapters {
		md.Chapters = append(md.Chapters, Chapter{
			Index:     ch.Index,
			Title:     ch.Title,
			StartTime: ch.StartTime,
			EndTime:   ch.EndTime,
		})
	}

	artworks, err := file.ExtractArtwork()
	if err != nil {
		return nil, fmt.Errorf("metadata: extract artwork %s: %w", path, err)
	}
	if len(artworks) > 0 {
		cover, err := coverFromArtwork(artworks[0].Data, artworks[0].MIMEType)
		if err != nil {
			return nil, fmt.Errorf("metadata: decode cover %s: %w", path, err)
		}
		md.Cover = cover
	}

	return md, nil
}

// normalizeGenres slugifies and dedupes each raw genre label independently;
// normalize.GenreSlugs operates on one label at a time.
func normalizeGenres(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, g := range raw {
		for _, slug := range normalize.GenreSlugs(g) {
			if slug == "" || seen[slug] {
				continue
			}
			seen[slug] = true
			out = append(out, slug)
		}
	}
	return out
}
