// Package mediameta extracts lightweight metadata (pixel dimensions, audio
// duration) from raw media bytes before upload. Extraction failures are never
// fatal for the caller; an item just keeps zero metadata.
package mediameta

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageSize returns the pixel dimensions of a jpeg, png or webp image
// without decoding the full bitmap.
func ImageSize(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to probe image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
