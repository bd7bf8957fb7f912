package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/DrTomLLC/StoryStream/internal/metadata"
)

// NativeParser parses audio metadata directly from embedded tags, via
// internal/metadata's extractor - no external ffprobe process required.
type NativeParser struct {
	extractor *metadata.Extractor
}

func NewNativeParser() *NativeParser {
	return &NativeParser{extractor: metadata.NewExtractor()}
}

func (p *NativeParser) Parse(ctx context.Context, path string) (*Metadata, error) {
	extracted, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return convertMetadata(extracted), nil
}

// ParseMultiFile aggregates per-chapter audio files (one file per chapter,
// a common layout for older MP3 audiobook rips) into a single Metadata:
// book-level tags come from the first file, and each file becomes one
// chapter with a cumulative time offset.
func (p *NativeParser) ParseMultiFile(ctx context.Context, paths []string) (*Metadata, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files provided")
	}

	first, err := p.extractor.Extract(ctx, paths[0])
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", paths[0], err)
	}
	result := convertMetadata(first)
	result.Chapters = nil

	var offset time.Duration
	for i, path := range paths {
		var extracted *metadata.ExtractedMetadata
		if i == 0 {
			extracted = first
		} else {
			extracted, err = p.extractor.Extract(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}

		title := extracted.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		result.Chapters = append(result.Chapters, Chapter{
			Index:     i,
			Title:     title,
			StartTime: offset,
			EndTime:   offset + extracted.Duration,
		})
		offset += extracted.Duration
	}
	result.Duration = offset

	return result, nil
}

// convertMetadata adapts internal/metadata's format-agnostic extraction
// result to the scanner package's own Metadata shape.
func convertMetadata(extracted *metadata.ExtractedMetadata) *Metadata {
	result := &Metadata{
		Format:     extracted.Codec,
		Duration:   extracted.Duration,
		Bitrate:    extracted.Bitrate,
		SampleRate: extracted.SampleRate,
		Channels:   extracted.Channels,
		Codec:      extracted.Codec,

		Title:       extracted.Title,
		Artist:      extracted.Author,
		AlbumArtist: extracted.Author,
		Year:        extracted.Year,
		Track:       extracted.TrackNumber,
		TrackTotal:  extracted.TrackTotal,

		Narrator:    extracted.Narrator,
		Publisher:   extracted.Publisher,
		Description: extracted.Description,
		Subtitle:    extracted.Subtitle,
		Series:      extracted.Series,
		SeriesPart:  extracted.SeriesPart,
		ISBN:        extracted.ISBN,
		ASIN:        extracted.ASIN,
		Language:    extracted.Language,
	}

	if len(extracted.Genres) > 0 {
		result.Genre = extracted.Genres[0]
	}

	for _, ch := range extracted.Chapters {
		result.Chapters = append(result.Chapters, Chapter{
			Index:     ch.Index,
			Title:     ch.Title,
			StartTime: ch.StartTime,
			EndTime:   ch.EndTime,
		})
	}

	if extracted.Cover != nil {
		result.HasCover = true
		result.CoverMIME = extracted.Cover.MIMEType
	}

	return result
}
