package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers calculation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/calculate", h.HandleCalculate)
	r.Get("/assets", h.HandleGetAssets)
}
