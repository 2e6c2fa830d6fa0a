package image

import "errors"

var (
	// ErrNotFound means the requested image record does not exist.
	ErrNotFound = errors.New("image not found")
	// ErrDecode means stored or uploaded bytes could not be loaded or
	// parsed.
	ErrDecode = errors.New("image decode failed")
	// ErrEncode means a resized raster could not be serialized.
	ErrEncode = errors.New("image encode failed")
	// ErrStorageWrite means the file backend rejected the variant bytes.
	// No record is persisted when this happens.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrPersistence means the database rejected a read or write.
	ErrPersistence = errors.New("persistence failed")
	// ErrInvalidImage means the uploaded payload is not a supported image.
	ErrInvalidImage = errors.New("invalid image payload")
	// ErrTooLarge means the uploaded payload exceeds the configured cap.
	ErrTooLarge = errors.New("image too large")
)
