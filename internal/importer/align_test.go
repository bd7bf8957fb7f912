package importer

import (
	"testing"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

func TestAlignFeedChapterTitles_ReplacesGenericNames(t *testing.T) {
	chaps := []domain.Chapter{
		{Title: "Chapter 1", StartTimeMs: 0, EndTimeMs: 1000},
		{Title: "Chapter 2", StartTimeMs: 1000, EndTimeMs: 2000},
		{Title: "Chapter 3", StartTimeMs: 2000, EndTimeMs: 3000},
	}

	alignFeedChapterTitles(chaps, []string{"The Beginning", "The Middle", "The End"})

	for i, c := range chaps {
		if c.Title == "Chapter 1" || c.Title == "Chapter 2" || c.Title == "Chapter 3" {
			t.Errorf("chapter %d: expected generic name replaced, got %q", i, c.Title)
		}
	}
	if chaps[0].Title != "The Beginning" {
		t.Errorf("expected first chapter renamed to %q, got %q", "The Beginning", chaps[0].Title)
	}
}

func TestAlignFeedChapterTitles_LeavesNamedChaptersAlone(t *testing.T) {
	chaps := []domain.Chapter{
		{Title: "The Dragon's Lair", StartTimeMs: 0, EndTimeMs: 1000},
	}
	alignFeedChapterTitles(chaps, []string{"Something Else"})
	if chaps[0].Title != "The Dragon's Lair" {
		t.Errorf("expected named chapter left untouched, got %q", chaps[0].Title)
	}
}

func TestAlignFeedChapterTitles_NoFeedTitlesIsNoop(t *testing.T) {
	chaps := []domain.Chapter{{Title: "Chapter 1", StartTimeMs: 0, EndTimeMs: 1000}}
	alignFeedChapterTitles(chaps, nil)
	if chaps[0].Title != "Chapter 1" {
		t.Errorf("expected no-op with no feed titles, got %q", chaps[0].Title)
	}
}
