package importer

import (
	"github.com/DrTomLLC/StoryStream/internal/chapters"
	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// alignFeedChapterTitles replaces generically-named chapters (§4.4's
// "Chapter 1"-style placeholders C1's probe falls back to) with titles
// recovered from a feed's companion episode list, when a book was acquired
// via C2 (feed) -> C5 (download) rather than imported from a local file with
// its own embedded, properly-named chapter table.
//
// Only chapters the alignment is confident about are rewritten; a low
// overall confidence (bad position match, wildly different chapter counts)
// leaves the book's local chapters untouched rather than risk misnaming
// them.
func alignFeedChapterTitles(bookChapters []domain.Chapter, feedTitles []string) {
	if len(feedTitles) == 0 {
		return
	}
	analysis := chapters.AnalyzeChapters(toAlignChapters(bookChapters))
	if !analysis.NeedsUpdate {
		return
	}

	// Feed items carry no per-episode timing, only ordering, so remote
	// chapters are given synthetic, evenly-spaced positions across the
	// book's total local duration. Align then falls back to its
	// position-based matcher whenever counts disagree, same as it would
	// for a real timed remote source.
	var total int64
	if n := len(bookChapters); n > 0 {
		total = bookChapters[n-1].EndTimeMs
	}
	if total <= 0 {
		return
	}
	slice := total / int64(len(feedTitles))
	remote := make([]chapters.RemoteChapter, len(feedTitles))
	for i, title := range feedTitles {
		remote[i] = chapters.RemoteChapter{Title: title, StartMs: int64(i) * slice, DurationMs: slice}
	}

	result := chapters.Align(toAlignChapters(bookChapters), remote)
	if result.OverallConfidence < 0.6 {
		return
	}
	for _, ac := range result.Chapters {
		if ac.SuggestedName == "" || ac.Index >= len(bookChapters) {
			continue
		}
		if chapters.IsGenericName(bookChapters[ac.Index].Title) {
			bookChapters[ac.Index].Title = ac.SuggestedName
		}
	}
}

func toAlignChapters(bookChapters []domain.Chapter) []chapters.Chapter {
	out := make([]chapters.Chapter, len(bookChapters))
	for i, c := range bookChapters {
		out[i] = chapters.Chapter{Title: c.Title, StartTime: c.StartTimeMs, EndTime: c.EndTimeMs}
	}
	return out
}
