package metadata

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// extractGeneric handles containers simonhull/audiometa does not parse.
// .wav and .aiff carry enough header structure to compute exact audio
// properties; the remaining rare formats (.aac bare streams, .wma without a
// readily parsed ASF header, .ape, .wv) fall back to a filename-stem title
// with zero technical properties, matching what a library with no parser
// for the format can honestly report.
func extractGeneric(path, ext string) (*ExtractedMetadata, error) {
	switch ext {
	case ".wav":
		return extractWAV(path)
	case ".aiff", ".aif":
		return extractAIFF(path)
	default:
		return extractUnknown(path)
	}
}

func extractUnknown(path string) (*ExtractedMetadata, error) {
	return &ExtractedMetadata{
		Title: titleFromFilename(path),
	}, nil
}

func titleFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// extractWAV reads the RIFF/WAVE "fmt " chunk for sample rate, channels, and
// bit depth, then computes duration from the "data" chunk size.
func extractWAV(path string) (*ExtractedMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: open %s: %w", path, err)
	}
	defer f.Close()

	var riffHeader [12]byte
	if _, err := io.ReadFull(f, riffHeader[:]); err != nil {
		return nil, fmt.Errorf("metadata: read RIFF header %s: %w", path, err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return extractUnknown(path)
	}

	md := &ExtractedMetadata{Title: titleFromFilename(path), Codec: "pcm"}

	var sampleRate, byteRate int
	var channels, bitDepth int
	var dataSize int64

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(f, chunkHeader[:]); err != nil {
			break // EOF or short read: stop, return what we parsed so far
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, body); err != nil || len(body) < 16 {
				return md, nil
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			byteRate = int(binary.LittleEndian.Uint32(body[8:12]))
			bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			dataSize = int64(chunkSize)
			if _, err := f.Seek(int64(chunkSize), 1); err != nil {
				dataSize = 0
			}
		default:
			if _, err := f.Seek(int64(chunkSize), 1); err != nil {
				break
			}
		}
		if chunkSize%2 == 1 {
			_, _ = f.Seek(1, 1) // chunks are word-aligned
		}
	}

	md.SampleRate = sampleRate
	md.Channels = channels
	md.BitDepth = bitDepth
	md.Lossless = true
	if byteRate > 0 && dataSize > 0 {
		md.Duration = time.Duration(dataSize) * time.Second / time.Duration(byteRate)
		md.Bitrate = byteRate * 8
	}
	return md, nil
}

// extractAIFF reads the IFF "FORM"/"AIFF" COMM chunk for sample rate,
// channels, and bit depth; duration is derived from sample frame count.
func extractAIFF(path string) (*ExtractedMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: open %s: %w", path, err)
	}
	defer f.Close()

	var formHeader [12]byte
	if _, err := io.ReadFull(f, formHeader[:]); err != nil {
		return nil, fmt.Errorf("metadata: read FORM header %s: %w", path, err)
	}
	if string(formHeader[0:4]) != "FORM" || string(formHeader[8:12]) != "AIFF" {
		return extractUnknown(path)
	}

	md := &ExtractedMetadata{Title: titleFromFilename(path), Codec: "pcm", Lossless: true}

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(f, chunkHeader[:]); err != nil {
			break
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := int64(binary.BigEndian.Uint32(chunkHeader[4:8]))

		if chunkID == "COMM" && chunkSize >= 18 {
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, body); err != nil {
				return md, nil
			}
			md.Channels = int(binary.BigEndian.Uint16(body[0:2]))
			numSampleFrames := binary.BigEndian.Uint32(body[2:6])
			md.BitDepth = int(binary.BigEndian.Uint16(body[6:8]))
			sampleRate := decodeIEEE80ExtendedSampleRate(body[8:18])
			md.SampleRate = sampleRate
			if sampleRate > 0 {
				md.Duration = time.Duration(numSampleFrames) * time.Second / time.Duration(sampleRate)
			}
			if chunkSize%2 == 1 {
				_, _ = f.Seek(1, 1)
			}
			continue
		}

		if _, err := f.Seek(chunkSize, 1); err != nil {
			break
		}
		if chunkSize%2 == 1 {
			_, _ = f.Seek(1, 1)
		}
	}

	return md, nil
}

// decodeIEEE80ExtendedSampleRate decodes the 80-bit IEEE extended-precision
// float AIFF uses for sample rate. Only the common integer range used by
// real sample rates (up to a few MHz) is handled.
func decodeIEEE80ExtendedSampleRate(b []byte) int {
	if len(b) < 10 {
		return 0
	}
	sign := b[0] & 0x80
	exponent := int(binary.BigEndian.Uint16(b[0:2])&0x7fff) - 16383
	mantissa := binary.BigEndian.Uint64(b[2:10])
	if sign != 0 || exponent < 0 || exponent > 63 {
		return 0
	}
	value := mantissa >> uint(63-exponent)
	return int(value)
}
