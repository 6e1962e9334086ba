// Package bigpara fetches Borsa Istanbul quotes from BigPara through a CORS relay.
package bigpara

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

const sourceName = "bigpara"

// Client for the BigPara equity summary endpoint
type Client struct {
	client   *resty.Client
	proxyURL string
	baseURL  string
	log      zerolog.Logger
}

// NewClient creates a new BigPara client.
// Requests go to proxyURL/raw?url=<encoded BigPara URL>.
func NewClient(proxyURL, baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		client:   resty.New().SetTimeout(timeout).SetRetryCount(0),
		proxyURL: strings.TrimSuffix(proxyURL, "/"),
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		log:      log.With().Str("client", "bigpara").Logger(),
	}
}

type summaryResponse struct {
	Data struct {
		Last float64 `json:"last"`
	} `json:"data"`
}

// TargetURL returns the BigPara URL for symbol, with any .IS suffix removed
func (c *Client) TargetURL(symbol string) string {
	code := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(symbol)), ".IS")
	return fmt.Sprintf("%s/api/v1/borsa/hisseyuzeysel/%s", c.baseURL, code)
}

// LastPrice fetches the last traded price in TRY for symbol
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	target := c.TargetURL(symbol)
	c.log.Debug().Str("symbol", symbol).Str("target", target).Msg("Fetching quote")

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("url", target).
		Get(c.proxyURL + "/raw")
	if err != nil {
		return 0, fmt.Errorf("BigPara request failed: %w", err)
	}
	if resp.IsError() {
		return 0, &fetcher.StatusError{Source: sourceName, Code: resp.StatusCode()}
	}

	var result summaryResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return 0, fetcher.NewDecodeError(sourceName, err)
	}
	if result.Data.Last <= 0 {
		return 0, fetcher.NewDecodeError(sourceName, fmt.Errorf("no last price for %s", symbol))
	}

	return result.Data.Last, nil
}
