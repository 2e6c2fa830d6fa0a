package image

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns image router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Ingest)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/variant", h.GetVariant)

	return r
}
