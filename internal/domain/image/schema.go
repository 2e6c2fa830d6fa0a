package image

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema defines the images table. Enum codes for kind and format are
// documented on their Go types in entity.go.
const Schema = `
CREATE TABLE IF NOT EXISTS images (
    id            BIGSERIAL PRIMARY KEY,
    kind          SMALLINT    NOT NULL,
    locator       TEXT        NOT NULL,
    width         INTEGER     NOT NULL CHECK (width > 0),
    height        INTEGER     NOT NULL CHECK (height > 0),
    parent_id     BIGINT      REFERENCES images(id),
    wanted_width  INTEGER,
    wanted_height INTEGER,
    format        SMALLINT    NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK ((wanted_width IS NULL) = (wanted_height IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_images_parent_id ON images(parent_id);
CREATE INDEX IF NOT EXISTS idx_images_created_at ON images(created_at);
`

// EnsureSchema creates the images table if it does not exist yet.
// Both the API and the variant worker call this on startup.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure images schema: %w", err)
	}
	return nil
}
