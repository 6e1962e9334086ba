// Package handlers provides HTTP handlers for comparison calculations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/modules/calculator"
	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/aristath/hindsight/internal/modules/reference"
	"github.com/rs/zerolog"
)

// Calculator answers comparison requests
type Calculator interface {
	Calculate(ctx context.Context, req calculator.Request) (*calculator.ComparisonResult, error)
}

// Handler handles calculation HTTP requests
type Handler struct {
	calculator Calculator
	log        zerolog.Logger
}

// NewHandler creates a new calculation handler
func NewHandler(calc Calculator, log zerolog.Logger) *Handler {
	return &Handler{
		calculator: calc,
		log:        log.With().Str("handler", "calculator").Logger(),
	}
}

// CalculateRequest is the body of POST /api/calculate
type CalculateRequest struct {
	Amount  float64 `json:"amount"`
	Date    string  `json:"date"` // YYYY-MM-DD
	AssetID string  `json:"asset_id"`
	SubID   string  `json:"sub_id,omitempty"`
}

// HandleCalculate handles POST /api/calculate
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	date, err := time.Parse(historical.DateLayout, req.Date)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted as YYYY-MM-DD")
		return
	}

	result, err := h.calculator.Calculate(r.Context(), calculator.Request{
		Amount:  req.Amount,
		Date:    date,
		AssetID: domain.AssetID(req.AssetID),
		SubID:   req.SubID,
	})
	if err != nil {
		status, code := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("asset_id", req.AssetID).Msg("Calculation failed")
		}
		h.writeError(w, status, code, calculator.UserMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleGetAssets handles GET /api/assets
func (h *Handler) HandleGetAssets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"assets":   domain.Assets(),
		"cryptos":  domain.Cryptos(),
		"equities": domain.Equities(),
		"cars":     reference.Cars(),
	})
}

// errorStatus maps a calculation error to an HTTP status and error code
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, calculator.ErrUnknownSelection):
		return http.StatusBadRequest, "unknown_selection"
	case errors.Is(err, calculator.ErrMissingSelection):
		return http.StatusBadRequest, "missing_selection"
	case errors.Is(err, calculator.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, calculator.ErrFutureDate):
		return http.StatusBadRequest, "invalid_date"
	case errors.Is(err, calculator.ErrUnknownAssetClass):
		return http.StatusBadRequest, "unknown_asset"
	case errors.Is(err, calculator.ErrNoHistoricalData):
		return http.StatusUnprocessableEntity, "no_historical_data"
	case errors.Is(err, calculator.ErrNoCurrentRate):
		return http.StatusServiceUnavailable, "no_current_rate"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal"
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
