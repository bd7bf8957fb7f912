package metadata

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeWAV builds a minimal valid RIFF/WAVE file: a "fmt " chunk with the
// given format parameters and a "data" chunk of dataBytes zero bytes.
func writeWAV(t *testing.T, path string, sampleRate, channels, bitDepth, dataBytes int) {
	t.Helper()

	byteRate := sampleRate * channels * bitDepth / 8
	blockAlign := channels * bitDepth / 8

	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(fmtChunk[4:8], uint32(sampleRate))
	binary.LittleEndian.PutUint32(fmtChunk[8:12], uint32(byteRate))
	binary.LittleEndian.PutUint16(fmtChunk[12:14], uint16(blockAlign))
	binary.LittleEndian.PutUint16(fmtChunk[14:16], uint16(bitDepth))

	data := make([]byte, dataBytes)

	riffSize := 4 + (8 + len(fmtChunk)) + (8 + len(data))

	buf := make([]byte, 0, 12+8+len(fmtChunk)+8+len(data))
	buf = append(buf, []byte("RIFF")...)
	sizeBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBuf, uint32(riffSize))
	buf = append(buf, sizeBuf...)
	buf = append(buf, []byte("WAVE")...)

	buf = append(buf, []byte("fmt ")...)
	binary.LittleEndian.PutUint32(sizeBuf, uint32(len(fmtChunk)))
	buf = append(buf, sizeBuf...)
	buf = append(buf, fmtChunk...)

	buf = append(buf, []byte("data")...)
	binary.LittleEndian.PutUint32(sizeBuf, uint32(len(data)))
	buf = append(buf, sizeBuf...)
	buf = append(buf, data...)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write wav fixture: %v", err)
	}
}

func TestExtractWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapter-01.wav")
	writeWAV(t, path, 44100, 2, 16, 44100*2*2*10) // 10 seconds stereo 16-bit

	md, err := extractWAV(path)
	if err != nil {
		t.Fatalf("extractWAV: %v", err)
	}
	if md.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", md.SampleRate)
	}
	if md.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", md.Channels)
	}
	if md.BitDepth != 16 {
		t.Errorf("expected bit depth 16, got %d", md.BitDepth)
	}
	if !md.Lossless {
		t.Error("expected WAV to be reported lossless")
	}
	if md.Duration < 9*time.Second || md.Duration > 11*time.Second {
		t.Errorf("expected duration close to 10s, got %v", md.Duration)
	}
	if md.Title != "chapter-01" {
		t.Errorf("expected title from filename, got %q", md.Title)
	}
}

func TestExtractWAV_NotRIFFFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-wav.wav")
	if err := os.WriteFile(path, []byte("definitely not riff"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	md, err := extractWAV(path)
	if err != nil {
		t.Fatalf("extractWAV: %v", err)
	}
	if md.Title != "not-a-wav" {
		t.Errorf("expected filename-stem fallback, got %q", md.Title)
	}
	if md.SampleRate != 0 {
		t.Errorf("expected no sample rate from a non-RIFF file, got %d", md.SampleRate)
	}
}

func TestExtractGeneric_UnknownFormatFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audiobook-part-3.ape")
	if err := os.WriteFile(path, []byte{0x01, 0x02, 0x03}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	md, err := extractGeneric(path, ".ape")
	if err != nil {
		t.Fatalf("extractGeneric: %v", err)
	}
	if md.Title != "audiobook-part-3" {
		t.Errorf("expected filename-stem title, got %q", md.Title)
	}
	if md.Duration != 0 {
		t.Errorf("expected zero duration for unparsed format, got %v", md.Duration)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"/library/book/chapter-01.mp3": "chapter-01",
		"track.FLAC":                   "track",
		"noext":                        "noext",
	}
	for path, want := range tests {
		if got := titleFromFilename(path); got != want {
			t.Errorf("titleFromFilename(%q) = %q, want %q", path, got, want)
		}
	}
}
