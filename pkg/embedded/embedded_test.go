package embedded

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalData(t *testing.T) {
	require.NotEmpty(t, HistoricalData)

	var raw map[string]map[string]float64
	require.NoError(t, json.Unmarshal(HistoricalData, &raw))

	for _, key := range []string{"USD", "EUR", "altin", "bitcoin", "matic-network", "THYAO.IS"} {
		assert.NotEmpty(t, raw[key], key)
	}
}
