package metadata

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// blurHashComponents matches internal/media/images.ComputeBlurHash's choice
// of 4x3 components for cover placeholders.
const (
	blurHashComponentsX = 4
	blurHashComponentsY = 3
)

// coverFromArtwork decodes embedded artwork once, deriving both pixel
// dimensions and a blurhash placeholder from the same decoded image.
func coverFromArtwork(data []byte, mimeType string) (*Cover, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}

	hash, err := blurhash.Encode(blurHashComponentsX, blurHashComponentsY, img)
	if err != nil {
		return nil, fmt.Errorf("encode blurhash: %w", err)
	}

	bounds := img.Bounds()
	return &Cover{
		Data:     data,
		MIMEType: mimeType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		BlurHash: hash,
	}, nil
}
