// Package historical holds the immutable historical price series and answers
// point lookups with nearest-previous-day recovery.
package historical

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DateLayout is the calendar day format used for series keys
const DateLayout = "2006-01-02"

// MaxLookback is how many calendar days LookupPast steps back from a missing date
const MaxLookback = 7

// ErrNotFound is matched by every *NotFoundError
var ErrNotFound = errors.New("no historical price")

// NotFoundError reports a lookup with no entry within the lookback window.
// Earliest is the first date of the series, empty when the key has no series.
type NotFoundError struct {
	Key      string
	Date     string
	Earliest string
}

func (e *NotFoundError) Error() string {
	if e.Earliest == "" {
		return fmt.Sprintf("no historical series for %s", e.Key)
	}
	return fmt.Sprintf("no historical price for %s on or up to %d days before %s (data starts %s)",
		e.Key, MaxLookback, e.Date, e.Earliest)
}

// Is lets errors.Is match ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Point is one observation returned by a lookup
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	// Exact is false when the value came from an earlier day
	Exact bool `json:"exact"`
}

// Summary describes a whole series
type Summary struct {
	Key           string  `json:"key"`
	Count         int     `json:"count"`
	First         string  `json:"first"`
	Last          string  `json:"last"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"std_dev"`
	ChangePercent float64 `json:"change_percent"`
}

type series struct {
	values map[string]float64
	dates  []string // ascending
}

// Dataset maps series keys to date-keyed prices. It is immutable once built
// and safe for concurrent use.
type Dataset struct {
	series map[string]*series
}

// New builds a dataset from raw series, validating every date and price.
func New(raw map[string]map[string]float64) (*Dataset, error) {
	d := &Dataset{series: make(map[string]*series, len(raw))}

	for key, points := range raw {
		s := &series{
			values: make(map[string]float64, len(points)),
			dates:  make([]string, 0, len(points)),
		}
		for date, value := range points {
			if _, err := time.Parse(DateLayout, date); err != nil {
				return nil, fmt.Errorf("series %s: invalid date %q: %w", key, date, err)
			}
			if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
				return nil, fmt.Errorf("series %s: invalid price %v on %s", key, value, date)
			}
			s.values[date] = value
			s.dates = append(s.dates, date)
		}
		if len(s.dates) == 0 {
			continue
		}
		// ISO dates sort lexically
		sort.Strings(s.dates)
		d.series[key] = s
	}

	return d, nil
}

// Keys returns every series key, sorted
func (d *Dataset) Keys() []string {
	keys := make([]string, 0, len(d.series))
	for k := range d.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether a series exists for key
func (d *Dataset) Has(key string) bool {
	_, ok := d.series[key]
	return ok
}

// LookupPast returns the price for key on the calendar day of date. When that
// day has no entry it steps back one day at a time, up to MaxLookback days.
func (d *Dataset) LookupPast(key string, date time.Time) (Point, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	requested := day.Format(DateLayout)

	s, ok := d.series[key]
	if !ok {
		return Point{}, &NotFoundError{Key: key, Date: requested}
	}

	for step := 0; step <= MaxLookback; step++ {
		candidate := day.AddDate(0, 0, -step).Format(DateLayout)
		if v, ok := s.values[candidate]; ok {
			return Point{Date: candidate, Value: v, Exact: step == 0}, nil
		}
	}

	return Point{}, &NotFoundError{Key: key, Date: requested, Earliest: s.dates[0]}
}

// LatestKnown returns the value at the most recent date of the series
func (d *Dataset) LatestKnown(key string) (float64, bool) {
	p, ok := d.Latest(key)
	return p.Value, ok
}

// Latest returns the most recent observation of the series
func (d *Dataset) Latest(key string) (Point, bool) {
	s, ok := d.series[key]
	if !ok {
		return Point{}, false
	}
	last := s.dates[len(s.dates)-1]
	return Point{Date: last, Value: s.values[last], Exact: true}, true
}

// Range returns the first and last dates of the series
func (d *Dataset) Range(key string) (first, last string, ok bool) {
	s, ok := d.series[key]
	if !ok {
		return "", "", false
	}
	return s.dates[0], s.dates[len(s.dates)-1], true
}

// Earliest returns the first date of the series, or "" if there is none
func (d *Dataset) Earliest(key string) string {
	first, _, _ := d.Range(key)
	return first
}

// Summary computes descriptive statistics over the whole series
func (d *Dataset) Summary(key string) (Summary, bool) {
	s, ok := d.series[key]
	if !ok {
		return Summary{}, false
	}

	values := make([]float64, len(s.dates))
	for i, date := range s.dates {
		values[i] = s.values[date]
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	first, last := values[0], values[len(values)-1]

	return Summary{
		Key:           key,
		Count:         len(values),
		First:         s.dates[0],
		Last:          s.dates[len(s.dates)-1],
		Min:           floats.Min(values),
		Max:           floats.Max(values),
		Mean:          mean,
		StdDev:        std,
		ChangePercent: (last - first) / first * 100,
	}, true
}

// Raw returns a copy of the underlying series
func (d *Dataset) Raw() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(d.series))
	for key, s := range d.series {
		points := make(map[string]float64, len(s.values))
		for date, v := range s.values {
			points[date] = v
		}
		out[key] = points
	}
	return out
}
