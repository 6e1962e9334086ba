// Package handlers provides HTTP handlers for the saved portfolio.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/hindsight/internal/modules/calculator"
	"github.com/aristath/hindsight/internal/modules/portfolio"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PortfolioService is the subset of the portfolio service used by the handlers
type PortfolioService interface {
	Add(ctx context.Context, req portfolio.AddRequest) (*portfolio.Item, *calculator.ComparisonResult, error)
	List() ([]portfolio.Item, error)
	Remove(id string) error
	Valuate(ctx context.Context) (*portfolio.Valuation, error)
}

// Handler handles portfolio HTTP requests
type Handler struct {
	service PortfolioService
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleAdd)
		r.Get("/valuation", h.HandleValuation)
		r.Delete("/{id}", h.HandleRemove)
	})
}

// HandleList handles GET /api/portfolio
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list portfolio")
		h.writeError(w, http.StatusInternalServerError, "internal", "Failed to load the portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// HandleAdd handles POST /api/portfolio
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req portfolio.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	item, result, err := h.service.Add(r.Context(), req)
	if err != nil {
		var parseErr *time.ParseError
		switch {
		case errors.As(err, &parseErr):
			h.writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted as YYYY-MM-DD")
		case errors.Is(err, calculator.ErrNoCurrentRate):
			h.writeError(w, http.StatusServiceUnavailable, "no_current_rate", calculator.UserMessage(err))
		case isValidationError(err):
			h.writeError(w, http.StatusBadRequest, "invalid_item", calculator.UserMessage(err))
		default:
			h.log.Error().Err(err).Msg("Failed to add portfolio item")
			h.writeError(w, http.StatusInternalServerError, "internal", "Failed to save the item")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"item":   item,
		"result": result,
	})
}

// HandleRemove handles DELETE /api/portfolio/{id}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Remove(id); err != nil {
		if errors.Is(err, portfolio.ErrItemNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Portfolio item not found")
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("Failed to remove portfolio item")
		h.writeError(w, http.StatusInternalServerError, "internal", "Failed to remove the item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleValuation handles GET /api/portfolio/valuation
func (h *Handler) HandleValuation(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.service.Valuate(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to valuate portfolio")
		h.writeError(w, http.StatusInternalServerError, "internal", "Failed to value the portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, valuation)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		calculator.ErrInvalidAmount,
		calculator.ErrFutureDate,
		calculator.ErrUnknownAssetClass,
		calculator.ErrMissingSelection,
		calculator.ErrUnknownSelection,
		calculator.ErrNoHistoricalData,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
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
