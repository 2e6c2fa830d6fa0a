package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/TheNeikos/neikos.moe/internal/pkg/storage"
)

// Codec is the transcoding capability the domain needs. Implemented by
// internal/pkg/imaging.Codec.
type Codec interface {
	Decode(data []byte) (image.Image, string, error)
	Resize(img image.Image, maxWidth, maxHeight int) image.Image
	Encode(img image.Image, format string) ([]byte, error)
}

// Placement describes where an image's bytes ended up and what was
// actually encoded.
type Placement struct {
	Kind    StorageKind
	Locator string
	Width   int
	Height  int
	Format  Format
}

// Placer applies the storage placement policy: rasters strictly smaller
// than the inline threshold on both axes are base64-inlined as PNG,
// everything else is encoded in the requested format and written to
// file storage before any record is persisted.
type Placer struct {
	codec     Codec
	store     storage.Storage
	inlineMax int
}

// NewPlacer creates a placer. A non-positive threshold falls back to 200.
func NewPlacer(codec Codec, store storage.Storage, inlineMax int) *Placer {
	if inlineMax <= 0 {
		inlineMax = 200
	}
	return &Placer{codec: codec, store: store, inlineMax: inlineMax}
}

// ShouldInline reports whether a raster of the given size is small
// enough to live inside its record. The comparison is strict: an image
// exactly at the threshold is file-backed.
func (p *Placer) ShouldInline(width, height int) bool {
	return width < p.inlineMax && height < p.inlineMax
}

// Place encodes the raster and stores its bytes. The suffix
// distinguishes key collisions between images written in the same
// second; callers derive it from provenance (VariantSuffix) or upload
// identity.
func (p *Placer) Place(ctx context.Context, raster image.Image, format Format, suffix string) (*Placement, error) {
	width := raster.Bounds().Dx()
	height := raster.Bounds().Dy()

	if p.ShouldInline(width, height) {
		// Inline payloads are always PNG so locators render as a
		// single well-known data URI type.
		data, err := p.codec.Encode(raster, FormatPNG.Name())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		return &Placement{
			Kind:    KindInline,
			Locator: base64.StdEncoding.EncodeToString(data),
			Width:   width,
			Height:  height,
			Format:  FormatPNG,
		}, nil
	}

	data, err := p.codec.Encode(raster, format.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	key := FileKey(width, height, time.Now(), suffix, format)
	if err := p.store.Put(ctx, key, bytes.NewReader(data), format.Mime()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return &Placement{
		Kind:    KindFileBacked,
		Locator: key,
		Width:   width,
		Height:  height,
		Format:  format,
	}, nil
}

// FileKey builds the storage key for a file-backed image.
func FileKey(width, height int, ts time.Time, suffix string, format Format) string {
	return fmt.Sprintf("%d_%d-%d-%s%s", width, height, ts.Unix(), suffix, format.Ext())
}

// VariantSuffix is the key suffix for variants derived from the given
// original.
func VariantSuffix(parentID int64) string {
	return fmt.Sprintf("orig_%d", parentID)
}

// UploadSuffix is the key suffix for a freshly ingested original.
func UploadSuffix() string {
	return "up_" + uuid.New().String()
}
