package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// Codec decodes, resizes and re-encodes images in the formats the
// service stores: png, gif and jpeg. Importing the three stdlib codecs
// registers their decoders for image.Decode.
type Codec struct {
	quality int // JPEG quality 1-100
}

// NewCodec creates a codec. Quality outside 1-100 falls back to 85.
func NewCodec(quality int) *Codec {
	if quality < 1 || quality > 100 {
		quality = 85
	}
	return &Codec{quality: quality}
}

// Decode parses image bytes and returns the pixels and the detected
// format name ("png", "gif" or "jpeg").
func (c *Codec) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	switch format {
	case "png", "gif", "jpeg":
		return img, format, nil
	default:
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}
}

// Resize scales the image down to fit within maxWidth x maxHeight,
// preserving the aspect ratio. Images already inside the bounding box
// are returned unchanged.
func (c *Codec) Resize(img image.Image, maxWidth, maxHeight int) image.Image {
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

// Encode serializes the image in the given format.
func (c *Codec) Encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
			return nil, err
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	return buf.Bytes(), nil
}
