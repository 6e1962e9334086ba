// Package embedded provides embedded static assets for the application.
package embedded

import (
	_ "embed"
)

// HistoricalData is the bundled historical price dataset: a JSON object mapping
// series keys (USD, EUR, altin, coin ids, SYMBOL.IS) to date-keyed prices.
// It is used whenever no external dataset path is configured.
//
//go:embed data/historical.json
var HistoricalData []byte
