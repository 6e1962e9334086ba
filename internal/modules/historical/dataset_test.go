package historical

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newSparseDataset(t *testing.T) *Dataset {
	t.Helper()
	d, err := New(map[string]map[string]float64{
		"USD": {"2024-01-01": 29.5, "2024-01-05": 29.9},
	})
	require.NoError(t, err)
	return d
}

func TestLookupPast(t *testing.T) {
	d := newSparseDataset(t)

	tests := []struct {
		name      string
		date      string
		wantDate  string
		wantValue float64
		wantExact bool
	}{
		{name: "exact", date: "2024-01-05", wantDate: "2024-01-05", wantValue: 29.9, wantExact: true},
		{name: "nearest previous", date: "2024-01-03", wantDate: "2024-01-01", wantValue: 29.5},
		{name: "five days after last entry", date: "2024-01-10", wantDate: "2024-01-05", wantValue: 29.9},
		{name: "seven days after last entry", date: "2024-01-12", wantDate: "2024-01-05", wantValue: 29.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := d.LookupPast("USD", day(tt.date))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, p.Date)
			assert.Equal(t, tt.wantValue, p.Value)
			assert.Equal(t, tt.wantExact, p.Exact)
		})
	}
}

func TestLookupPast_NotFound(t *testing.T) {
	d := newSparseDataset(t)

	tests := []struct {
		name         string
		key          string
		date         string
		wantEarliest string
	}{
		{name: "beyond lookback window", key: "USD", date: "2024-01-13", wantEarliest: "2024-01-01"},
		{name: "before first entry", key: "USD", date: "2023-12-31", wantEarliest: "2024-01-01"},
		{name: "unknown key", key: "GBP", date: "2024-01-03", wantEarliest: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.LookupPast(tt.key, day(tt.date))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFound))

			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.key, nf.Key)
			assert.Equal(t, tt.date, nf.Date)
			assert.Equal(t, tt.wantEarliest, nf.Earliest)
		})
	}
}

func TestLookupPast_UsesCalendarDayOfGivenTime(t *testing.T) {
	d := newSparseDataset(t)
	istanbul := time.FixedZone("TRT", 3*60*60)

	// Local midnight would be the previous day in UTC
	p, err := d.LookupPast("USD", time.Date(2024, 1, 5, 0, 30, 0, 0, istanbul))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", p.Date)
	assert.True(t, p.Exact)
}

func TestLatestAndRange(t *testing.T) {
	d := newSparseDataset(t)

	v, ok := d.LatestKnown("USD")
	require.True(t, ok)
	assert.Equal(t, 29.9, v)

	first, last, ok := d.Range("USD")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", first)
	assert.Equal(t, "2024-01-05", last)
	assert.Equal(t, "2024-01-01", d.Earliest("USD"))

	_, ok = d.LatestKnown("EUR")
	assert.False(t, ok)
	assert.Equal(t, "", d.Earliest("EUR"))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(map[string]map[string]float64{"USD": {"01/02/2024": 30}})
	assert.Error(t, err)

	_, err = New(map[string]map[string]float64{"USD": {"2024-01-02": 0}})
	assert.Error(t, err)

	d, err := New(map[string]map[string]float64{"EMPTY": {}})
	require.NoError(t, err)
	assert.False(t, d.Has("EMPTY"))
}

func TestSummary(t *testing.T) {
	d, err := New(map[string]map[string]float64{
		"bitcoin": {"2024-01-01": 100, "2024-01-02": 200, "2024-01-03": 300},
		"single":  {"2024-01-01": 5},
	})
	require.NoError(t, err)

	s, ok := d.Summary("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "2024-01-01", s.First)
	assert.Equal(t, "2024-01-03", s.Last)
	assert.Equal(t, 100.0, s.Min)
	assert.Equal(t, 300.0, s.Max)
	assert.InDelta(t, 200.0, s.Mean, 1e-9)
	assert.InDelta(t, 100.0, s.StdDev, 1e-9) // sample standard deviation
	assert.InDelta(t, 200.0, s.ChangePercent, 1e-9)

	single, ok := d.Summary("single")
	require.True(t, ok)
	assert.Equal(t, 0.0, single.StdDev)

	_, ok = d.Summary("missing")
	assert.False(t, ok)
}

func TestEncodeDecodeFormats(t *testing.T) {
	d := newSparseDataset(t)

	for _, format := range []Format{FormatJSON, FormatMsgpack} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(d, format)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "dataset."+string(format))
			require.NoError(t, os.WriteFile(path, data, 0644))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, d.Raw(), loaded.Raw())
		})
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile("dataset.csv")
	assert.Error(t, err)
}

func TestLoad_EmbeddedDataset(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)

	for _, key := range []string{"USD", "EUR", "altin", "bitcoin", "ethereum", "matic-network", "THYAO.IS"} {
		assert.True(t, d.Has(key), key)
	}

	// Weekly data is dense enough that any in-range day resolves
	p, err := d.LookupPast("USD", day("2023-06-18"))
	require.NoError(t, err)
	assert.Greater(t, p.Value, 0.0)
}
