package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEquitySymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "THYAO.IS", want: "THYAO.IS"},
		{in: "thyao", want: "THYAO.IS"},
		{in: " garan.is ", want: "GARAN.IS"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEquitySymbol(tt.in), tt.in)
	}
}

func TestQuote(t *testing.T) {
	assert.True(t, Quote{Value: 1, Source: SourceFallback}.IsFallback())
	assert.False(t, Quote{Value: 1, Source: "TCMB (Official)"}.IsFallback())

	assert.True(t, Quote{Value: 0.0001}.Valid())
	assert.False(t, Quote{Value: 0}.Valid())
	assert.False(t, Quote{Value: -3}.Valid())
	assert.False(t, Quote{Value: math.Inf(1)}.Valid())
	assert.False(t, Quote{Value: math.NaN()}.Valid())
}

func TestCurrencyRates_Rate(t *testing.T) {
	r := CurrencyRates{USD: 34.5, EUR: 37.5}

	assert.Equal(t, 34.5, r.Rate(CurrencyUSD))
	assert.Equal(t, 37.5, r.Rate(CurrencyEUR))
	assert.Equal(t, 0.0, r.Rate(CurrencyTRY))
}

func TestLookupAsset(t *testing.T) {
	a, ok := LookupAsset(AssetOunceGold)
	assert.True(t, ok)
	assert.Equal(t, ClassPreciousMetal, a.Class)
	assert.Equal(t, SeriesGold, a.SeriesKey)
	assert.False(t, a.NeedsSelection())

	car, ok := LookupAsset(AssetCar)
	assert.True(t, ok)
	assert.True(t, car.NeedsSelection())

	_, ok = LookupAsset("silver")
	assert.False(t, ok)

	// The catalogue is a copy
	list := Assets()
	list[0].Label = "changed"
	again, _ := LookupAsset(list[0].ID)
	assert.NotEqual(t, "changed", again.Label)
}

func TestLookupCrypto(t *testing.T) {
	matic, ok := LookupCrypto("matic-network")
	assert.True(t, ok)
	assert.Equal(t, LocalDenominated, matic.Mode)

	btc, ok := LookupCrypto("bitcoin")
	assert.True(t, ok)
	assert.Equal(t, UsdDenominated, btc.Mode)

	unknown, ok := LookupCrypto("pepe")
	assert.False(t, ok)
	assert.Equal(t, UsdDenominated, unknown.Mode)
	assert.Equal(t, "pepe", unknown.Name)
}

func TestLookupEquity(t *testing.T) {
	e, ok := LookupEquity("thyao")
	assert.True(t, ok)
	assert.Equal(t, "Türk Hava Yolları", e.Name)

	unknown, ok := LookupEquity("xyz")
	assert.False(t, ok)
	assert.Equal(t, "XYZ.IS", unknown.Symbol)
}
