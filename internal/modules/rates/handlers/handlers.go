// Package handlers provides HTTP handlers for current rates.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/modules/prices"
	"github.com/aristath/hindsight/internal/modules/rates"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RatesService is the subset of the rates service used by the handlers
type RatesService interface {
	Overview(ctx context.Context, cryptoID string) (*rates.Overview, error)
	Current(ctx context.Context, class domain.AssetClass, ref string) (domain.Quote, error)
}

// Handler handles rates HTTP requests
type Handler struct {
	service RatesService
	log     zerolog.Logger
}

// NewHandler creates a new rates handler
func NewHandler(service RatesService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "rates").Logger(),
	}
}

var liveClasses = map[domain.AssetClass]bool{
	domain.ClassFiatCurrency:  true,
	domain.ClassPreciousMetal: true,
	domain.ClassCryptoAsset:   true,
	domain.ClassListedEquity:  true,
}

// RegisterRoutes registers rates routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rates", h.HandleGetOverview)
	r.Get("/prices/current/{class}/{ref}", h.HandleGetCurrent)
}

// HandleGetOverview handles GET /api/rates?crypto=bitcoin
func (h *Handler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context(), r.URL.Query().Get("crypto"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve rates overview")
		h.writeError(w, http.StatusServiceUnavailable, "no_current_rate",
			"Current prices are unavailable right now. Please try again later.")
		return
	}

	h.writeJSON(w, http.StatusOK, overview)
}

// HandleGetCurrent handles GET /api/prices/current/{class}/{ref}
func (h *Handler) HandleGetCurrent(w http.ResponseWriter, r *http.Request) {
	class := domain.AssetClass(chi.URLParam(r, "class"))
	ref := chi.URLParam(r, "ref")

	if !liveClasses[class] {
		h.writeError(w, http.StatusBadRequest, "unknown_asset", "Unknown asset class.")
		return
	}

	quote, err := h.service.Current(r.Context(), class, ref)
	if err != nil {
		if errors.Is(err, prices.ErrResolutionExhausted) {
			h.writeError(w, http.StatusNotFound, "no_current_rate", "No current price is available for "+ref+".")
			return
		}
		h.log.Error().Err(err).Str("class", string(class)).Str("ref", ref).Msg("Failed to resolve current price")
		h.writeError(w, http.StatusServiceUnavailable, "no_current_rate",
			"Current prices are unavailable right now. Please try again later.")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"class":    class,
		"ref":      ref,
		"quote":    quote,
		"fallback": quote.IsFallback(),
	})
}

// writeJSON wraps data in the standard response envelope
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON error")
	}
}
