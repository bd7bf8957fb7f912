package metadata

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestCoverFromArtwork(t *testing.T) {
	data := encodeTestPNG(t, 300, 200)

	cover, err := coverFromArtwork(data, "image/png")
	if err != nil {
		t.Fatalf("coverFromArtwork: %v", err)
	}
	if cover.Width != 300 || cover.Height != 200 {
		t.Errorf("expected 300x200, got %dx%d", cover.Width, cover.Height)
	}
	if cover.MIMEType != "image/png" {
		t.Errorf("expected mime type preserved, got %q", cover.MIMEType)
	}
	if cover.BlurHash == "" {
		t.Error("expected a non-empty blurhash")
	}
	if !bytes.Equal(cover.Data, data) {
		t.Error("expected original artwork bytes to be preserved")
	}
}

func TestCoverFromArtwork_InvalidData(t *testing.T) {
	if _, err := coverFromArtwork([]byte("not an image"), "image/png"); err == nil {
		t.Error("expected an error decoding invalid image data")
	}
}
