package reference

import (
	"testing"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflationRate(t *testing.T) {
	rate, ok := InflationRate(2022)
	require.True(t, ok)
	assert.Equal(t, 72.31, rate)

	_, ok = InflationRate(1999)
	assert.False(t, ok)
}

func TestCumulativeInflation(t *testing.T) {
	// Single year equals the annual rate
	assert.InDelta(t, 52.0, CumulativeInflation(2024, 2024), 1e-9)

	// Two years compound: 1.6477 * 1.52 - 1
	assert.InDelta(t, 150.4504, CumulativeInflation(2023, 2024), 1e-6)

	// Empty range
	assert.Equal(t, 0.0, CumulativeInflation(2025, 2024))
}

func TestCars(t *testing.T) {
	car, ok := LookupCar("fiat-egea")
	require.True(t, ok)
	assert.Equal(t, "Fiat Egea", car.Name)

	price, ok := car.Price(2020)
	require.True(t, ok)
	assert.Equal(t, 145000.0, price)

	years := car.Years()
	require.NotEmpty(t, years)
	assert.Equal(t, 2015, years[0])
	assert.Equal(t, 2026, years[len(years)-1])

	_, ok = LookupCar("delorean")
	assert.False(t, ok)
	assert.Len(t, Cars(), 4)
}

func TestEquityFallback(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		year   int
		want   float64
		wantOK bool
	}{
		{name: "year specific", symbol: "THYAO.IS", year: 2022, want: 180, wantOK: true},
		{name: "suffix optional", symbol: "akbnk", year: 2021, want: 32, wantOK: true},
		{name: "flat table for other years", symbol: "THYAO.IS", year: 2026, want: 290, wantOK: true},
		{name: "flat only symbol", symbol: "BIMAS.IS", year: 2020, want: 580, wantOK: true},
		{name: "unknown symbol", symbol: "NOPE.IS", year: 2024, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EquityFallback(tt.symbol, tt.year)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimates(t *testing.T) {
	var e Estimates

	tests := []struct {
		name   string
		class  domain.AssetClass
		ref    string
		year   int
		want   float64
		wantOK bool
	}{
		{name: "usd past year", class: domain.ClassFiatCurrency, ref: "USD", year: 2023, want: 29.57, wantOK: true},
		{name: "eur current estimate", class: domain.ClassFiatCurrency, ref: "EUR", year: 2026, want: 48.90, wantOK: true},
		{name: "unsupported currency", class: domain.ClassFiatCurrency, ref: "GBP", year: 2026, wantOK: false},
		{name: "gram gold", class: domain.ClassPreciousMetal, ref: domain.GoldGram, year: 2024, want: 3000, wantOK: true},
		{name: "ounce gold", class: domain.ClassPreciousMetal, ref: domain.GoldOunce, year: 2024, want: 3000 * domain.GramsPerTroyOunce, wantOK: true},
		{name: "gold year missing", class: domain.ClassPreciousMetal, ref: domain.GoldGram, year: 1990, wantOK: false},
		{name: "bitcoin", class: domain.ClassCryptoAsset, ref: "bitcoin", year: 2026, want: 103000, wantOK: true},
		{name: "unknown coin", class: domain.ClassCryptoAsset, ref: "solana", year: 2026, wantOK: false},
		{name: "equity", class: domain.ClassListedEquity, ref: "GARAN.IS", year: 2023, want: 95, wantOK: true},
		{name: "fixed table has no estimate", class: domain.ClassFixedTable, ref: "minWage", year: 2026, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Estimate(tt.class, tt.ref, tt.year)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
