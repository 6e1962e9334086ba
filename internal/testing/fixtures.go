package testing

import (
	"testing"
	"time"

	"github.com/aristath/hindsight/internal/modules/historical"
)

// FixedNow is the reference "today" used across tests
var FixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// Clock returns a clock frozen at FixedNow
func Clock() func() time.Time {
	return func() time.Time { return FixedNow }
}

// Day parses a YYYY-MM-DD date as UTC midnight
func Day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(historical.DateLayout, s)
	if err != nil {
		t.Fatalf("Invalid fixture date %q: %v", s, err)
	}
	return d
}

// SampleSeries is a small dataset covering every time-series asset class
func SampleSeries() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"USD":      {"2020-01-06": 6.0, "2023-01-02": 18.7, "2024-03-11": 32.0},
		"EUR":      {"2020-01-06": 6.6, "2023-01-02": 19.9, "2024-03-11": 35.0},
		"altin":    {"2020-01-06": 300, "2023-01-02": 1100, "2024-03-11": 2100},
		"bitcoin":  {"2020-01-06": 7500, "2023-01-02": 16700, "2024-03-11": 70000},
		"THYAO.IS": {"2020-01-06": 15, "2023-01-02": 150, "2024-03-11": 290},
	}
}

// SampleDataset builds a dataset from SampleSeries
func SampleDataset(t *testing.T) *historical.Dataset {
	t.Helper()
	ds, err := historical.New(SampleSeries())
	if err != nil {
		t.Fatalf("Failed to build sample dataset: %v", err)
	}
	return ds
}
