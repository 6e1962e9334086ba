// Package exchangerate fetches USD based currency rates from exchangerate-api.com.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/fetcher"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const sourceName = "exchangerate"

// Client for exchangerate-api.com
type Client struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewClient creates a new exchangerate-api.com client
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout).SetRetryCount(0),
		log:    log.With().Str("client", "exchangerate-api").Logger(),
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// GetRates fetches the TRY price of one USD and one EUR.
// The feed is USD based, so EUR in TRY is derived as TRY/EUR.
func (c *Client) GetRates(ctx context.Context) (domain.CurrencyRates, error) {
	resp, err := c.client.R().SetContext(ctx).Get("/USD")
	if err != nil {
		return domain.CurrencyRates{}, fmt.Errorf("API request failed: %w", err)
	}
	if resp.IsError() {
		return domain.CurrencyRates{}, &fetcher.StatusError{Source: sourceName, Code: resp.StatusCode()}
	}

	var result latestResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return domain.CurrencyRates{}, fetcher.NewDecodeError(sourceName, err)
	}

	usdToTry, eurPerUsd := result.Rates["TRY"], result.Rates["EUR"]
	if usdToTry <= 0 || eurPerUsd <= 0 {
		return domain.CurrencyRates{}, fetcher.NewDecodeError(sourceName,
			fmt.Errorf("rates missing TRY or EUR"))
	}

	rates := domain.CurrencyRates{USD: usdToTry, EUR: usdToTry / eurPerUsd}

	c.log.Info().
		Float64("usd", rates.USD).
		Float64("eur", rates.EUR).
		Msg("Fetched rates")

	return rates, nil
}
