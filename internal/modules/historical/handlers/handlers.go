// Package handlers provides HTTP handlers for historical data operations.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/rs/zerolog"
)

// Handler handles historical data HTTP requests
type Handler struct {
	dataset *historical.Dataset
	log     zerolog.Logger
}

// NewHandler creates a new historical data handler
func NewHandler(dataset *historical.Dataset, log zerolog.Logger) *Handler {
	return &Handler{
		dataset: dataset,
		log:     log.With().Str("handler", "historical").Logger(),
	}
}

type seriesInfo struct {
	Key   string `json:"key"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// HandleListSeries handles GET /api/historical
func (h *Handler) HandleListSeries(w http.ResponseWriter, r *http.Request) {
	keys := h.dataset.Keys()
	series := make([]seriesInfo, 0, len(keys))
	for _, key := range keys {
		first, last, _ := h.dataset.Range(key)
		series = append(series, seriesInfo{Key: key, First: first, Last: last})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"series": series,
		"count":  len(series),
	})
}

// HandleGetPastPrice handles GET /api/historical/{key}/past?date=YYYY-MM-DD
func (h *Handler) HandleGetPastPrice(w http.ResponseWriter, r *http.Request, key string) {
	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse(historical.DateLayout, dateStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted as YYYY-MM-DD")
		return
	}

	point, err := h.dataset.LookupPast(key, date)
	if err != nil {
		var nf *historical.NotFoundError
		if errors.As(err, &nf) {
			h.writeError(w, http.StatusNotFound, "not_found", notFoundMessage(nf))
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to look up past price")
		h.writeError(w, http.StatusInternalServerError, "internal", "Failed to look up past price")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":       key,
		"requested": dateStr,
		"point":     point,
	})
}

// HandleGetLatest handles GET /api/historical/{key}/latest
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request, key string) {
	point, ok := h.dataset.Latest(key)
	if !ok {
		h.writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("No historical data for %s", key))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":   key,
		"point": point,
	})
}

// HandleGetRange handles GET /api/historical/{key}/range
func (h *Handler) HandleGetRange(w http.ResponseWriter, r *http.Request, key string) {
	first, last, ok := h.dataset.Range(key)
	if !ok {
		h.writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("No historical data for %s", key))
		return
	}

	h.writeJSON(w, http.StatusOK, seriesInfo{Key: key, First: first, Last: last})
}

// HandleGetSummary handles GET /api/historical/{key}/summary
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request, key string) {
	summary, ok := h.dataset.Summary(key)
	if !ok {
		h.writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("No historical data for %s", key))
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func notFoundMessage(nf *historical.NotFoundError) string {
	if nf.Earliest == "" {
		return fmt.Sprintf("No historical data for %s", nf.Key)
	}
	return fmt.Sprintf("%s data starts on %s. Please pick a later date.", nf.Key, nf.Earliest)
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

	response := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON error")
	}
}
