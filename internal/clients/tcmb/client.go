// Package tcmb fetches the official daily currency rates published by the
// Central Bank of the Republic of Türkiye.
package tcmb

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/fetcher"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const sourceName = "tcmb"

// The feed is matched by pattern rather than decoded, since only two fields matter
// and the element attributes have moved between feed revisions.
var forexSelling = map[domain.Currency]*regexp.Regexp{
	domain.CurrencyUSD: regexp.MustCompile(`(?s)(?:CurrencyCode|Kod)="USD".*?<ForexSelling>([\d.]+)</ForexSelling>`),
	domain.CurrencyEUR: regexp.MustCompile(`(?s)(?:CurrencyCode|Kod)="EUR".*?<ForexSelling>([\d.]+)</ForexSelling>`),
}

// Client for the TCMB today.xml feed
type Client struct {
	client *resty.Client
	url    string
	log    zerolog.Logger
}

// NewClient creates a new TCMB client for the feed at url
func NewClient(url string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		client: resty.New().SetTimeout(timeout).SetRetryCount(0),
		url:    url,
		log:    log.With().Str("client", "tcmb").Logger(),
	}
}

// GetRates fetches the USD and EUR forex selling rates in TRY
func (c *Client) GetRates(ctx context.Context) (domain.CurrencyRates, error) {
	c.log.Debug().Str("url", c.url).Msg("Fetching rates")

	resp, err := c.client.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return domain.CurrencyRates{}, fmt.Errorf("TCMB request failed: %w", err)
	}
	if resp.IsError() {
		return domain.CurrencyRates{}, &fetcher.StatusError{Source: sourceName, Code: resp.StatusCode()}
	}

	rates, err := ParseRates(resp.String())
	if err != nil {
		return domain.CurrencyRates{}, fetcher.NewDecodeError(sourceName, err)
	}

	c.log.Info().
		Float64("usd", rates.USD).
		Float64("eur", rates.EUR).
		Msg("Fetched rates")

	return rates, nil
}

// ParseRates extracts the USD and EUR forex selling rates from the feed body
func ParseRates(body string) (domain.CurrencyRates, error) {
	usd, err := matchRate(body, domain.CurrencyUSD)
	if err != nil {
		return domain.CurrencyRates{}, err
	}
	eur, err := matchRate(body, domain.CurrencyEUR)
	if err != nil {
		return domain.CurrencyRates{}, err
	}
	return domain.CurrencyRates{USD: usd, EUR: eur}, nil
}

func matchRate(body string, currency domain.Currency) (float64, error) {
	m := forexSelling[currency].FindStringSubmatch(body)
	if m == nil {
		return 0, fmt.Errorf("no ForexSelling rate for %s", currency)
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s rate %q: %w", currency, m[1], err)
	}
	return rate, nil
}
