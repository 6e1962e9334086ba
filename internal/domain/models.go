// Package domain provides core domain models and types.
package domain

import (
	"math"
	"strings"
	"time"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyTRY Currency = "TRY" // Local currency; every result is expressed in it
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// AssetClass groups assets that share a pricing strategy
type AssetClass string

const (
	ClassFiatCurrency  AssetClass = "fiat-currency"
	ClassPreciousMetal AssetClass = "precious-metal"
	ClassCryptoAsset   AssetClass = "crypto-asset"
	ClassListedEquity  AssetClass = "listed-equity"
	// ClassFixedTable covers assets priced by calendar year rather than by date
	ClassFixedTable AssetClass = "fixed-table"
)

// ConversionMode tells whether a series is quoted in USD or already in TRY
type ConversionMode string

const (
	UsdDenominated   ConversionMode = "usd"
	LocalDenominated ConversionMode = "local"
)

// GramsPerTroyOunce converts ounce quotes to gram quotes
const GramsPerTroyOunce = 31.1035

// Source labels attached to quotes that did not come from a live or cached source
const (
	SourceFallback         = "Fallback (Estimated)"
	SourceLatestHistorical = "Historical (Latest)"
)

// CurrencyRates holds the TRY price of one USD and one EUR
type CurrencyRates struct {
	USD float64 `json:"usd"`
	EUR float64 `json:"eur"`
}

// Rate returns the TRY price of currency, or 0 for anything but USD and EUR
func (r CurrencyRates) Rate(currency Currency) float64 {
	switch currency {
	case CurrencyUSD:
		return r.USD
	case CurrencyEUR:
		return r.EUR
	}
	return 0
}

// Quote is a single resolved price with its provenance
type Quote struct {
	Value  float64   `json:"value"`
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

// IsFallback reports whether the quote came from the static estimate table
func (q Quote) IsFallback() bool {
	return q.Source == SourceFallback
}

// Valid reports whether the quote carries a usable price
func (q Quote) Valid() bool {
	return ValidPrice(q.Value)
}

// ValidPrice reports whether v is a positive finite number
func ValidPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// NormalizeEquitySymbol returns the market-suffixed series key for an equity symbol.
// "thyao" and "THYAO.IS" both become "THYAO.IS".
func NormalizeEquitySymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return ""
	}
	if strings.HasSuffix(s, EquityMarketSuffix) {
		return s
	}
	return s + EquityMarketSuffix
}
