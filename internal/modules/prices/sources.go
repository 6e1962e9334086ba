package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/hindsight/internal/clients/coingecko"
	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/fetcher"
)

// Provenance labels of the live sources
const (
	LabelTCMB         = "TCMB (Official)"
	LabelExchangeRate = "Global API"
	LabelCoinGecko    = "CoinGecko"
	LabelPaxGold      = "CoinGecko (PAXG)"
	LabelBigPara      = "BigPara"
)

// RatesClient fetches the USD and EUR rate pair in TRY
type RatesClient interface {
	GetRates(ctx context.Context) (domain.CurrencyRates, error)
}

// CoinClient fetches USD prices by coin id
type CoinClient interface {
	Price(ctx context.Context, id string) (float64, error)
}

// EquityClient fetches the last price of an equity in TRY
type EquityClient interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// CurrentResolver is the part of Resolver the gold source depends on
type CurrentResolver interface {
	ResolveCurrent(ctx context.Context, class domain.AssetClass, ref string) (domain.Quote, error)
}

// CurrencySource serves fiat refs (USD, EUR) from one rate-pair feed.
// Both feeds carry both currencies, so one cache entry covers the pair.
type CurrencySource struct {
	label    string
	cacheKey string
	client   RatesClient
	fetcher  *fetcher.Fetcher
}

// NewTCMBSource creates the official central bank currency source
func NewTCMBSource(f *fetcher.Fetcher, client RatesClient) *CurrencySource {
	return &CurrencySource{label: LabelTCMB, cacheKey: "tcmb", client: client, fetcher: f}
}

// NewExchangeRateSource creates the exchangerate-api currency source
func NewExchangeRateSource(f *fetcher.Fetcher, client RatesClient) *CurrencySource {
	return &CurrencySource{label: LabelExchangeRate, cacheKey: "exchangerate", client: client, fetcher: f}
}

// Name returns the provenance label
func (s *CurrencySource) Name() string { return s.label }

// Fetch returns the TRY price of the currency named by ref
func (s *CurrencySource) Fetch(ctx context.Context, ref string) (domain.Quote, error) {
	rates, err := fetcher.Fetch(ctx, s.fetcher, s.cacheKey, s.client.GetRates)
	if err != nil {
		return domain.Quote{}, err
	}
	rate := rates.Rate(domain.Currency(ref))
	if rate == 0 {
		return domain.Quote{}, fmt.Errorf("%s does not quote %q", s.label, ref)
	}
	return domain.Quote{Value: rate, Source: s.label}, nil
}

// CryptoSource serves coin ids from CoinGecko, quoted in USD
type CryptoSource struct {
	client  CoinClient
	fetcher *fetcher.Fetcher
}

// NewCryptoSource creates the CoinGecko crypto source
func NewCryptoSource(f *fetcher.Fetcher, client CoinClient) *CryptoSource {
	return &CryptoSource{client: client, fetcher: f}
}

// Name returns the provenance label
func (s *CryptoSource) Name() string { return LabelCoinGecko }

// Fetch returns the USD price of the coin id in ref
func (s *CryptoSource) Fetch(ctx context.Context, ref string) (domain.Quote, error) {
	usd, err := fetcher.Fetch(ctx, s.fetcher, "coingecko:"+ref, func(ctx context.Context) (float64, error) {
		return s.client.Price(ctx, ref)
	})
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{Value: usd, Source: LabelCoinGecko}, nil
}

// GoldSource prices gold from the PAX Gold token, one token per troy ounce in USD,
// converted to TRY with the resolved current USD rate.
type GoldSource struct {
	client  CoinClient
	fetcher *fetcher.Fetcher
	rates   CurrentResolver
}

// NewGoldSource creates the PAXG gold source
func NewGoldSource(f *fetcher.Fetcher, client CoinClient, rates CurrentResolver) *GoldSource {
	return &GoldSource{client: client, fetcher: f, rates: rates}
}

// Name returns the provenance label
func (s *GoldSource) Name() string { return LabelPaxGold }

// Fetch returns the TRY price of one gram (ref domain.GoldGram) or one
// troy ounce (ref domain.GoldOunce) of gold
func (s *GoldSource) Fetch(ctx context.Context, ref string) (domain.Quote, error) {
	if ref != domain.GoldGram && ref != domain.GoldOunce {
		return domain.Quote{}, fmt.Errorf("unknown gold unit %q", ref)
	}

	usdPerOunce, err := fetcher.Fetch(ctx, s.fetcher, coingecko.PaxGoldID, func(ctx context.Context) (float64, error) {
		return s.client.Price(ctx, coingecko.PaxGoldID)
	})
	if err != nil {
		return domain.Quote{}, err
	}

	usd, err := s.rates.ResolveCurrent(ctx, domain.ClassFiatCurrency, string(domain.CurrencyUSD))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to resolve USD rate for gold: %w", err)
	}

	perOunce := usdPerOunce * usd.Value
	if ref == domain.GoldOunce {
		return domain.Quote{Value: perOunce, Source: LabelPaxGold}, nil
	}
	return domain.Quote{Value: perOunce / domain.GramsPerTroyOunce, Source: LabelPaxGold}, nil
}

// EquitySource serves Borsa Istanbul symbols from BigPara.
// The live call is bounded by timeout; a slow answer counts as a failure.
type EquitySource struct {
	client  EquityClient
	fetcher *fetcher.Fetcher
	timeout time.Duration
}

// NewEquitySource creates the BigPara equity source
func NewEquitySource(f *fetcher.Fetcher, client EquityClient, timeout time.Duration) *EquitySource {
	return &EquitySource{client: client, fetcher: f, timeout: timeout}
}

// Name returns the provenance label
func (s *EquitySource) Name() string { return LabelBigPara }

// Fetch returns the TRY price of the symbol in ref
func (s *EquitySource) Fetch(ctx context.Context, ref string) (domain.Quote, error) {
	symbol := domain.NormalizeEquitySymbol(ref)
	if symbol == "" {
		return domain.Quote{}, fmt.Errorf("empty equity symbol")
	}

	load := fetcher.Race(func(ctx context.Context) (float64, error) {
		return s.client.LastPrice(ctx, symbol)
	}, s.timeout)

	price, err := fetcher.Fetch(ctx, s.fetcher, "bigpara:"+symbol, load)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{Value: price, Source: LabelBigPara}, nil
}
