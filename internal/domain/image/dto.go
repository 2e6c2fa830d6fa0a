package image

import "time"

// VariantQuery carries the requested bounding box for GET .../variant
type VariantQuery struct {
	Width  int `json:"width" validate:"required,gte=1,lte=10000"`
	Height int `json:"height" validate:"required,gte=1,lte=10000"`
}

// IngestForm carries the multipart upload metadata for POST /images
type IngestForm struct {
	Filename string `json:"filename" validate:"required,max=255,image_ext"`
}

// ImageResponse represents an image record in API responses. URL is the
// rendered locator: a data URI for inline images, a public file URL
// otherwise.
type ImageResponse struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Kind         string `json:"kind"`
	Format       string `json:"format"`
	ParentID     *int64 `json:"parent_id,omitempty"`
	WantedWidth  *int   `json:"wanted_width,omitempty"`
	WantedHeight *int   `json:"wanted_height,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ImageResponseFromEntity converts entity to response DTO
func ImageResponseFromEntity(img *Image, url string) *ImageResponse {
	return &ImageResponse{
		ID:           img.ID,
		URL:          url,
		Width:        img.Width,
		Height:       img.Height,
		Kind:         img.Kind.String(),
		Format:       img.Format.String(),
		ParentID:     img.ParentID,
		WantedWidth:  img.WantedWidth,
		WantedHeight: img.WantedHeight,
		CreatedAt:    img.CreatedAt.Format(time.RFC3339),
	}
}
