package image

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines image record data access
type Repository interface {
	Insert(ctx context.Context, img *Image) (int64, error)
	FindByID(ctx context.Context, id int64) (*Image, error)
	FindChild(ctx context.Context, parentID int64, width, height int) (*Image, error)
	ListRecentOriginals(ctx context.Context, since time.Time, limit int) ([]*Image, error)
	ExistsByFileLocator(ctx context.Context, locator string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new image repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, img *Image) (int64, error) {
	query := `
		INSERT INTO images (kind, locator, width, height, parent_id, wanted_width, wanted_height, format)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id int64
	err := r.db.GetContext(ctx, &id, query,
		img.Kind,
		img.Locator,
		img.Width,
		img.Height,
		img.ParentID,
		img.WantedWidth,
		img.WantedHeight,
		img.Format,
	)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Image, error) {
	query := `SELECT * FROM images WHERE id = $1`
	var img Image
	err := r.db.GetContext(ctx, &img, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

// FindChild looks up an existing variant of the given parent. A variant
// matches when the requested width or height equals either its wanted
// size or, for rows predating wanted tracking, its actual size. Ties go
// to the largest stored variant.
func (r *repository) FindChild(ctx context.Context, parentID int64, width, height int) (*Image, error) {
	query := `
		SELECT * FROM images
		WHERE parent_id = $1
		  AND ((wanted_width IS NULL AND (width = $2 OR height = $3))
		       OR wanted_width = $2 OR wanted_height = $3)
		ORDER BY width DESC, height DESC
		LIMIT 1
	`
	var img Image
	err := r.db.GetContext(ctx, &img, query, parentID, width, height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

func (r *repository) ListRecentOriginals(ctx context.Context, since time.Time, limit int) ([]*Image, error) {
	query := `
		SELECT * FROM images
		WHERE parent_id IS NULL AND created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var images []*Image
	err := r.db.SelectContext(ctx, &images, query, since, limit)
	return images, err
}

func (r *repository) ExistsByFileLocator(ctx context.Context, locator string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM images WHERE kind = $1 AND locator = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, KindFileBacked, locator)
	return exists, err
}
