package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all historical data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/historical", func(r chi.Router) {
		r.Get("/", h.HandleListSeries)

		r.Route("/{key}", func(r chi.Router) {
			r.Get("/past", h.withKey(h.HandleGetPastPrice))
			r.Get("/latest", h.withKey(h.HandleGetLatest))
			r.Get("/range", h.withKey(h.HandleGetRange))
			r.Get("/summary", h.withKey(h.HandleGetSummary))
		})
	})
}

func (h *Handler) withKey(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, chi.URLParam(r, "key"))
	}
}
