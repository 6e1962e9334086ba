// Package coingecko fetches USD spot prices from the CoinGecko simple price API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/hindsight/internal/fetcher"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const sourceName = "coingecko"

// PaxGoldID is the CoinGecko id of PAX Gold, one token per troy ounce of gold
const PaxGoldID = "pax-gold"

// Client for the CoinGecko API
type Client struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewClient creates a new CoinGecko client
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json"),
		log: log.With().Str("client", "coingecko").Logger(),
	}
}

// SimplePrice fetches USD prices for the given coin ids.
// Every requested id must be present with a positive price.
func (c *Client) SimplePrice(ctx context.Context, ids ...string) (map[string]float64, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one coin id is required")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetQueryParam("vs_currencies", "usd").
		Get("/simple/price")
	if err != nil {
		return nil, fmt.Errorf("CoinGecko request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &fetcher.StatusError{Source: sourceName, Code: resp.StatusCode()}
	}

	var result map[string]map[string]float64
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fetcher.NewDecodeError(sourceName, err)
	}

	prices := make(map[string]float64, len(ids))
	for _, id := range ids {
		usd := result[id]["usd"]
		if usd <= 0 {
			return nil, fetcher.NewDecodeError(sourceName, fmt.Errorf("no usd price for %s", id))
		}
		prices[id] = usd
	}

	c.log.Debug().Strs("ids", ids).Msg("Fetched prices")
	return prices, nil
}

// Price fetches the USD price of a single coin id
func (c *Client) Price(ctx context.Context, id string) (float64, error) {
	prices, err := c.SimplePrice(ctx, id)
	if err != nil {
		return 0, err
	}
	return prices[id], nil
}
