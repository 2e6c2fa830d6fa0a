package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/TheNeikos/neikos.moe/internal/pkg/storage"
)

// WakeChannel is the Redis pub/sub channel new image IDs are published
// on. The variant worker subscribes to it to pre-warm standard sizes
// without waiting for its next poll.
const WakeChannel = "images:created"

// Service handles image resolution business logic
type Service struct {
	repo           Repository
	store          storage.Storage
	codec          Codec
	placer         *Placer
	rdb            *redis.Client // optional; nil disables wake-up publishing
	maxUploadBytes int64
}

// NewService creates image service
func NewService(repo Repository, store storage.Storage, codec Codec, placer *Placer, rdb *redis.Client, maxUploadBytes int64) *Service {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return &Service{
		repo:           repo,
		store:          store,
		codec:          codec,
		placer:         placer,
		rdb:            rdb,
		maxUploadBytes: maxUploadBytes,
	}
}

// GetByID loads a single image record.
func (s *Service) GetByID(ctx context.Context, id int64) (*Image, error) {
	img, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if img == nil {
		return nil, ErrNotFound
	}
	return img, nil
}

// ResolveByID loads the parent record and resolves a variant for it.
func (s *Service) ResolveByID(ctx context.Context, id int64, width, height int) (*Image, error) {
	parent, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, parent, width, height)
}

// Resolve returns an image of the parent that fits within width x
// height: the parent itself when it already fits (variants are never
// upscaled), an existing variant when one matches the requested size,
// or a freshly synthesized one. Concurrent misses for the same size may
// each insert a variant; FindChild's ordering returns a stable winner
// on later lookups, so duplicates waste space but not correctness.
func (s *Service) Resolve(ctx context.Context, parent *Image, width, height int) (*Image, error) {
	if parent.FitsWithin(width, height) {
		return parent, nil
	}

	child, err := s.repo.FindChild(ctx, parent.ID, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if child != nil {
		return child, nil
	}

	return s.createVariant(ctx, parent, width, height)
}

func (s *Service) createVariant(ctx context.Context, parent *Image, width, height int) (*Image, error) {
	data, err := s.loadBytes(ctx, parent)
	if err != nil {
		return nil, err
	}

	raster, _, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	// Aspect-preserving fit: actual dimensions may come out smaller
	// than requested on one axis.
	resized := s.codec.Resize(raster, width, height)

	placed, err := s.placer.Place(ctx, resized, parent.Format, VariantSuffix(parent.ID))
	if err != nil {
		return nil, err
	}

	img := &Image{
		Kind:         placed.Kind,
		Locator:      placed.Locator,
		Width:        placed.Width,
		Height:       placed.Height,
		ParentID:     &parent.ID,
		WantedWidth:  &width,
		WantedHeight: &height,
		Format:       placed.Format,
	}

	created, err := s.insertAndReload(ctx, img)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int64("image_id", created.ID).
		Int64("parent_id", parent.ID).
		Int("wanted_width", width).
		Int("wanted_height", height).
		Int("width", created.Width).
		Int("height", created.Height).
		Str("kind", created.Kind.String()).
		Msg("Variant created")

	return created, nil
}

// Ingest stores an uploaded original: sniffs and validates the payload,
// decodes it, places the bytes per the placement policy and persists
// the record. Publishes a worker wake-up when Redis is configured.
func (s *Service) Ingest(ctx context.Context, r io.Reader) (*Image, error) {
	data, mime, err := storage.SniffImage(r, s.maxUploadBytes)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	format, err := FormatFromMime(mime)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	raster, _, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	placed, err := s.placer.Place(ctx, raster, format, UploadSuffix())
	if err != nil {
		return nil, err
	}

	img := &Image{
		Kind:    placed.Kind,
		Locator: placed.Locator,
		Width:   placed.Width,
		Height:  placed.Height,
		Format:  placed.Format,
	}

	created, err := s.insertAndReload(ctx, img)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("image_id", created.ID).
		Int("width", created.Width).
		Int("height", created.Height).
		Str("format", created.Format.String()).
		Str("kind", created.Kind.String()).
		Msg("Image ingested")

	s.publishCreated(ctx, created.ID)
	return created, nil
}

// Locate renders the public locator for an image: a data URI for
// inline payloads, the storage URL for file-backed ones.
func (s *Service) Locate(img *Image) string {
	if img.Kind == KindInline {
		return img.DataURI()
	}
	return s.store.GetURL(img.Locator)
}

func (s *Service) insertAndReload(ctx context.Context, img *Image) (*Image, error) {
	id, err := s.repo.Insert(ctx, img)
	if err != nil {
		// A parent row deleted mid-flight surfaces as an FK violation
		if isParentReferenceError(err) {
			return nil, fmt.Errorf("%w: parent deleted concurrently", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	created, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if created == nil {
		return nil, fmt.Errorf("%w: inserted image %d not readable", ErrPersistence, id)
	}
	return created, nil
}

// loadBytes fetches the encoded bytes an image record points at.
func (s *Service) loadBytes(ctx context.Context, img *Image) ([]byte, error) {
	switch img.Kind {
	case KindInline:
		data, err := base64.StdEncoding.DecodeString(img.Locator)
		if err != nil {
			return nil, fmt.Errorf("%w: inline payload: %w", ErrDecode, err)
		}
		return data, nil
	default:
		rc, err := s.store.Get(ctx, img.Locator)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrDecode, img.Locator, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrDecode, img.Locator, err)
		}
		return data, nil
	}
}

func (s *Service) publishCreated(ctx context.Context, id int64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Publish(ctx, WakeChannel, id).Err(); err != nil {
		log.Warn().Err(err).Int64("image_id", id).Msg("Failed to publish image created event")
	}
}

func isParentReferenceError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503" && pqErr.Constraint == "images_parent_id_fkey"
	}
	return false
}
