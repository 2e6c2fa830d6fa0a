package image

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// StorageKind says where an image's bytes live. The integer codes are
// part of the persisted format and must not be renumbered.
type StorageKind int

const (
	// KindFileBacked bytes live under the uploads root; locator is the
	// storage key.
	KindFileBacked StorageKind = 0
	// KindInline bytes live in the row itself; locator is a padded
	// standard-base64 PNG payload.
	KindInline StorageKind = 1
)

func (k StorageKind) String() string {
	switch k {
	case KindFileBacked:
		return "file"
	case KindInline:
		return "inline"
	default:
		return fmt.Sprintf("StorageKind(%d)", int(k))
	}
}

// Value implements driver.Valuer so sqlx can serialize the code.
func (k StorageKind) Value() (driver.Value, error) {
	switch k {
	case KindFileBacked, KindInline:
		return int64(k), nil
	default:
		return nil, fmt.Errorf("invalid storage kind: %d", int(k))
	}
}

// Scan implements sql.Scanner. An out-of-range code is a persistence
// error, not a panic.
func (k *StorageKind) Scan(src interface{}) error {
	code, err := scanCode(src)
	if err != nil {
		return fmt.Errorf("storage kind: %w", err)
	}
	switch StorageKind(code) {
	case KindFileBacked, KindInline:
		*k = StorageKind(code)
		return nil
	default:
		return fmt.Errorf("unknown storage kind code: %d", code)
	}
}

// Format is the encoded image format. The integer codes are part of the
// persisted format and must not be renumbered.
type Format int

const (
	FormatPNG  Format = 0
	FormatGIF  Format = 1
	FormatJPEG Format = 2
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatGIF:
		return "gif"
	case FormatJPEG:
		return "jpeg"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Name returns the codec format name ("png", "gif", "jpeg").
func (f Format) Name() string {
	return f.String()
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatGIF:
		return ".gif"
	case FormatJPEG:
		return ".jpg"
	default:
		return ".png"
	}
}

// Mime returns the MIME type for the format.
func (f Format) Mime() string {
	switch f {
	case FormatGIF:
		return "image/gif"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// FormatFromMime maps a sniffed MIME type to a Format.
func FormatFromMime(mime string) (Format, error) {
	switch mime {
	case "image/png":
		return FormatPNG, nil
	case "image/gif":
		return FormatGIF, nil
	case "image/jpeg":
		return FormatJPEG, nil
	default:
		return 0, fmt.Errorf("unsupported mime type: %s", mime)
	}
}

// Value implements driver.Valuer so sqlx can serialize the code.
func (f Format) Value() (driver.Value, error) {
	switch f {
	case FormatPNG, FormatGIF, FormatJPEG:
		return int64(f), nil
	default:
		return nil, fmt.Errorf("invalid format: %d", int(f))
	}
}

// Scan implements sql.Scanner. An out-of-range code is a persistence
// error, not a panic.
func (f *Format) Scan(src interface{}) error {
	code, err := scanCode(src)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	switch Format(code) {
	case FormatPNG, FormatGIF, FormatJPEG:
		*f = Format(code)
		return nil
	default:
		return fmt.Errorf("unknown format code: %d", code)
	}
}

func scanCode(src interface{}) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case []byte:
		var code int64
		if _, err := fmt.Sscanf(string(v), "%d", &code); err != nil {
			return 0, fmt.Errorf("unexpected value %q", string(v))
		}
		return code, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", src)
	}
}

// Image is one stored raster: an uploaded original or a resized variant
// derived from one. Variants reference their original via ParentID and
// remember the size that was asked for alongside the size that actually
// came out of the aspect-preserving resize.
type Image struct {
	ID           int64       `db:"id" json:"id"`
	Kind         StorageKind `db:"kind" json:"kind"`
	Locator      string      `db:"locator" json:"-"`
	Width        int         `db:"width" json:"width"`
	Height       int         `db:"height" json:"height"`
	ParentID     *int64      `db:"parent_id" json:"parent_id,omitempty"`
	WantedWidth  *int        `db:"wanted_width" json:"wanted_width,omitempty"`
	WantedHeight *int        `db:"wanted_height" json:"wanted_height,omitempty"`
	Format       Format      `db:"format" json:"format"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// FitsWithin reports whether the stored image already fits inside the
// requested bounding box. The resolver never upscales, so a fitting
// image is returned as-is.
func (i *Image) FitsWithin(width, height int) bool {
	return i.Width <= width && i.Height <= height
}

// IsOriginal reports whether this record is an uploaded original rather
// than a derived variant.
func (i *Image) IsOriginal() bool {
	return i.ParentID == nil
}

// DataURI renders an inline image as a browser-consumable data URI.
// Inline payloads are always PNG.
func (i *Image) DataURI() string {
	return "data:image/png;base64," + i.Locator
}
