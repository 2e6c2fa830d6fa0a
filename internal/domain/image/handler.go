package image

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/TheNeikos/neikos.moe/internal/pkg/logger"
	"github.com/TheNeikos/neikos.moe/internal/pkg/response"
	"github.com/TheNeikos/neikos.moe/internal/pkg/validator"
)

// Handler handles image HTTP requests
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler creates image handler
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// GetByID handles GET /images/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid image ID")
		return
	}

	img, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, ImageResponseFromEntity(img, h.service.Locate(img)))
}

// GetVariant handles GET /images/{id}/variant?width=&height=
func (h *Handler) GetVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid image ID")
		return
	}

	q := VariantQuery{
		Width:  queryInt(r, "width"),
		Height: queryInt(r, "height"),
	}
	if errs := validator.Validate(&q); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	img, err := h.service.ResolveByID(r.Context(), id, q.Width, q.Height)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, ImageResponseFromEntity(img, h.service.Locate(img)))
}

// Ingest handles POST /images
// Multipart form: file
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	form := IngestForm{Filename: header.Filename}
	if errs := validator.Validate(&form); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	img, err := h.service.Ingest(r.Context(), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, ImageResponseFromEntity(img, h.service.Locate(img)))
}

// writeError maps service errors onto the response envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Image not found")
	case errors.Is(err, ErrTooLarge):
		// ParseMultipartForm rejects oversized bodies with a 400 before
		// the sniff limit fires; this arm only triggers when the service
		// cap is set below the HTTP cap.
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds maximum size")
	case errors.Is(err, ErrInvalidImage):
		response.UnprocessableEntity(w, "File is not a supported image")
	case errors.Is(err, ErrDecode):
		response.UnprocessableEntity(w, "Image could not be decoded")
	default:
		logger.FromContext(r.Context()).Error().Err(err).Msg("Image request failed")
		response.InternalError(w)
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
