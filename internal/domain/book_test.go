package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

func TestBook_AudioFileLookup(t *testing.T) {
	b := &domain.Book{}
	b.UpdateAudioFile(domain.AudioFileInfo{ID: "af-1", Inode: 1, Size: 100, Duration: 1000})
	b.UpdateAudioFile(domain.AudioFileInfo{ID: "af-2", Inode: 2, Size: 200, Duration: 2000})

	require.NotNil(t, b.GetAudioFileByID("af-2"))
	assert.Equal(t, int64(200), b.GetAudioFileByID("af-2").Size)
	assert.Nil(t, b.GetAudioFileByID("af-missing"))

	require.NotNil(t, b.GetAudioFileByInode(1))
	assert.Equal(t, "af-1", b.GetAudioFileByInode(1).ID)
}

func TestBook_UpdateAudioFile_UpdatesExistingByInode(t *testing.T) {
	b := &domain.Book{}
	added := b.UpdateAudioFile(domain.AudioFileInfo{ID: "af-1", Inode: 1, Size: 100})
	assert.False(t, added)
	assert.Len(t, b.AudioFiles, 1)

	updated := b.UpdateAudioFile(domain.AudioFileInfo{ID: "af-1", Inode: 1, Size: 999})
	assert.True(t, updated)
	assert.Len(t, b.AudioFiles, 1)
	assert.Equal(t, int64(999), b.AudioFiles[0].Size)
}

func TestBook_RemoveAudioFileByInode(t *testing.T) {
	b := &domain.Book{}
	b.UpdateAudioFile(domain.AudioFileInfo{ID: "af-1", Inode: 1})
	b.UpdateAudioFile(domain.AudioFileInfo{ID: "af-2", Inode: 2})

	assert.True(t, b.RemoveAudioFileByInode(1))
	assert.Len(t, b.AudioFiles, 1)
	assert.False(t, b.RemoveAudioFileByInode(1))
}

func TestBook_RecalculateTotals(t *testing.T) {
	b := &domain.Book{}
	b.AudioFiles = []domain.AudioFileInfo{
		{Size: 100, Duration: 1000},
		{Size: 200, Duration: 2000},
	}
	b.RecalculateTotals()
	assert.Equal(t, int64(300), b.FileSizeBytes)
	assert.Equal(t, int64(3000), b.TotalDurationMs)
}

func TestBook_DeriveDurationFromChapters(t *testing.T) {
	b := &domain.Book{TotalDurationMs: 500}
	b.Chapters = []domain.Chapter{
		{Index: 0, StartTimeMs: 0, EndTimeMs: 1000},
		{Index: 1, StartTimeMs: 1000, EndTimeMs: 2500},
	}
	b.DeriveDurationFromChapters()
	assert.Equal(t, int64(2500), b.TotalDurationMs)
}

func TestBook_DeriveDurationFromChapters_NoChaptersKeepsExisting(t *testing.T) {
	b := &domain.Book{TotalDurationMs: 500}
	b.DeriveDurationFromChapters()
	assert.Equal(t, int64(500), b.TotalDurationMs)
}

func TestValidateChapters_ContiguousAndOrdered(t *testing.T) {
	chapters := []domain.Chapter{
		{Index: 0, StartTimeMs: 0, EndTimeMs: 1000},
		{Index: 1, StartTimeMs: 1000, EndTimeMs: 2000},
		{Index: 2, StartTimeMs: 2000, EndTimeMs: 3000},
	}
	assert.NoError(t, domain.ValidateChapters(chapters))
}

func TestValidateChapters_IndexGap(t *testing.T) {
	chapters := []domain.Chapter{
		{Index: 0, StartTimeMs: 0, EndTimeMs: 1000},
		{Index: 2, StartTimeMs: 1000, EndTimeMs: 2000},
	}
	assert.Error(t, domain.ValidateChapters(chapters))
}

func TestValidateChapters_Overlap(t *testing.T) {
	chapters := []domain.Chapter{
		{Index: 0, StartTimeMs: 0, EndTimeMs: 1500},
		{Index: 1, StartTimeMs: 1000, EndTimeMs: 2000},
	}
	assert.Error(t, domain.ValidateChapters(chapters))
}

func TestValidateChapters_StartNotBeforeEnd(t *testing.T) {
	chapters := []domain.Chapter{
		{Index: 0, StartTimeMs: 1000, EndTimeMs: 1000},
	}
	assert.Error(t, domain.ValidateChapters(chapters))
}

func TestGenerateAudioFileID_Stable(t *testing.T) {
	assert.Equal(t, domain.GenerateAudioFileID(255), domain.GenerateAudioFileID(255))
	assert.Equal(t, "af-ff", domain.GenerateAudioFileID(255))
}
