package cover

import (
	"bytes"
	"fmt"
	"image"

	// formats the site serves covers in
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageDecoder turns downloaded bytes into an image
type ImageDecoder interface {
	Decode(data []byte) (image.Image, error)
}

// Decoder decodes JPEG, PNG, GIF and WebP
type Decoder struct{}

func (Decoder) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty %s image", format)
	}
	return img, nil
}
