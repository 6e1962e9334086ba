package domain

// AssetID identifies a comparison target
type AssetID string

const (
	AssetDollar      AssetID = "dolar"
	AssetEuro        AssetID = "euro"
	AssetGold        AssetID = "altin"
	AssetOunceGold   AssetID = "ons_altin"
	AssetCrypto      AssetID = "btc"
	AssetStock       AssetID = "stock"
	AssetMinimumWage AssetID = "minWage"
	AssetInflation   AssetID = "inflation"
	AssetCar         AssetID = "car"
)

// EquityMarketSuffix marks Borsa Istanbul symbols in series keys
const EquityMarketSuffix = ".IS"

// Gold units accepted when resolving a current precious metal price
const (
	GoldGram  = "gram"
	GoldOunce = "ounce"
)

// Series keys for assets with a fixed key
const (
	SeriesUSD  = "USD"
	SeriesEUR  = "EUR"
	SeriesGold = "altin"
)

// Asset describes one selectable comparison target
type Asset struct {
	ID    AssetID    `json:"id"`
	Label string     `json:"label"`
	Unit  string     `json:"unit,omitempty"`
	Class AssetClass `json:"class"`
	// SeriesKey is the historical series for assets with a fixed key.
	// Crypto and equity keys come from the selection.
	SeriesKey string `json:"series_key,omitempty"`
	// Selection names the sub-asset kind the caller must pick, if any
	Selection string `json:"selection,omitempty"`
}

// NeedsSelection reports whether the asset requires a sub-asset id
func (a Asset) NeedsSelection() bool {
	return a.Selection != ""
}

var assets = []Asset{
	{ID: AssetDollar, Label: "US Dollar", Unit: "$", Class: ClassFiatCurrency, SeriesKey: SeriesUSD},
	{ID: AssetEuro, Label: "Euro", Unit: "€", Class: ClassFiatCurrency, SeriesKey: SeriesEUR},
	{ID: AssetGold, Label: "Gram Gold", Unit: "gr", Class: ClassPreciousMetal, SeriesKey: SeriesGold},
	{ID: AssetOunceGold, Label: "Ounce Gold", Unit: "oz", Class: ClassPreciousMetal, SeriesKey: SeriesGold},
	{ID: AssetCrypto, Label: "Crypto", Class: ClassCryptoAsset, Selection: "crypto"},
	{ID: AssetStock, Label: "Stock", Unit: "shares", Class: ClassListedEquity, Selection: "stock"},
	{ID: AssetMinimumWage, Label: "Minimum Wage", Class: ClassFixedTable},
	{ID: AssetInflation, Label: "Inflation", Class: ClassFixedTable},
	{ID: AssetCar, Label: "Car", Class: ClassFixedTable, Selection: "car"},
}

// Assets returns the asset catalogue in display order
func Assets() []Asset {
	out := make([]Asset, len(assets))
	copy(out, assets)
	return out
}

// LookupAsset finds an asset by id
func LookupAsset(id AssetID) (Asset, bool) {
	for _, a := range assets {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

// Crypto describes a supported coin
type Crypto struct {
	ID     string         `json:"id"` // CoinGecko id, also the series key
	Name   string         `json:"name"`
	Symbol string         `json:"symbol"`
	Mode   ConversionMode `json:"conversion_mode"`
}

var cryptos = []Crypto{
	{ID: "bitcoin", Name: "Bitcoin (BTC)", Symbol: "BTC", Mode: UsdDenominated},
	{ID: "ethereum", Name: "Ethereum (ETH)", Symbol: "ETH", Mode: UsdDenominated},
	{ID: "binancecoin", Name: "Binance Coin (BNB)", Symbol: "BNB", Mode: UsdDenominated},
	{ID: "ripple", Name: "Ripple (XRP)", Symbol: "XRP", Mode: UsdDenominated},
	{ID: "cardano", Name: "Cardano (ADA)", Symbol: "ADA", Mode: UsdDenominated},
	{ID: "solana", Name: "Solana (SOL)", Symbol: "SOL", Mode: UsdDenominated},
	{ID: "polkadot", Name: "Polkadot (DOT)", Symbol: "DOT", Mode: UsdDenominated},
	{ID: "dogecoin", Name: "Dogecoin (DOGE)", Symbol: "DOGE", Mode: UsdDenominated},
	{ID: "avalanche-2", Name: "Avalanche (AVAX)", Symbol: "AVAX", Mode: UsdDenominated},
	{ID: "chainlink", Name: "Chainlink (LINK)", Symbol: "LINK", Mode: UsdDenominated},
	{ID: "litecoin", Name: "Litecoin (LTC)", Symbol: "LTC", Mode: UsdDenominated},
	// The Polygon series in the bundled dataset is quoted in TRY
	{ID: "matic-network", Name: "Polygon (MATIC)", Symbol: "MATIC", Mode: LocalDenominated},
	{ID: "uniswap", Name: "Uniswap (UNI)", Symbol: "UNI", Mode: UsdDenominated},
	{ID: "stellar", Name: "Stellar (XLM)", Symbol: "XLM", Mode: UsdDenominated},
}

// Cryptos returns the supported coins
func Cryptos() []Crypto {
	out := make([]Crypto, len(cryptos))
	copy(out, cryptos)
	return out
}

// LookupCrypto finds a coin by id. Unknown ids are returned as a
// USD denominated coin named after the id, with ok set to false.
func LookupCrypto(id string) (Crypto, bool) {
	for _, c := range cryptos {
		if c.ID == id {
			return c, true
		}
	}
	return Crypto{ID: id, Name: id, Symbol: "CRYPTO", Mode: UsdDenominated}, false
}

// Equity describes a supported Borsa Istanbul listing
type Equity struct {
	Symbol string `json:"symbol"` // Market-suffixed, e.g. THYAO.IS
	Name   string `json:"name"`
}

var equities = []Equity{
	{Symbol: "THYAO.IS", Name: "Türk Hava Yolları"},
	{Symbol: "AKBNK.IS", Name: "Akbank"},
	{Symbol: "GARAN.IS", Name: "Garanti BBVA"},
	{Symbol: "EREGL.IS", Name: "Ereğli Demir Çelik"},
	{Symbol: "BIMAS.IS", Name: "BİM"},
	{Symbol: "TUPRS.IS", Name: "Tüpraş"},
	{Symbol: "SAHOL.IS", Name: "Sabancı Holding"},
	{Symbol: "KCHOL.IS", Name: "Koç Holding"},
	{Symbol: "SISE.IS", Name: "Şişe Cam"},
	{Symbol: "PETKM.IS", Name: "Petkim"},
	{Symbol: "ISCTR.IS", Name: "İş Bankası (C)"},
	{Symbol: "ASELS.IS", Name: "Aselsan"},
	{Symbol: "KOZAL.IS", Name: "Koza Altın"},
	{Symbol: "TCELL.IS", Name: "Turkcell"},
	{Symbol: "ENKAI.IS", Name: "Enka İnşaat"},
}

// Equities returns the supported listings
func Equities() []Equity {
	out := make([]Equity, len(equities))
	copy(out, equities)
	return out
}

// LookupEquity finds a listing by symbol, with or without the market suffix.
// Unknown symbols are returned named after the normalized symbol, with ok set to false.
func LookupEquity(symbol string) (Equity, bool) {
	key := NormalizeEquitySymbol(symbol)
	for _, e := range equities {
		if e.Symbol == key {
			return e, true
		}
	}
	return Equity{Symbol: key, Name: key}, false
}
