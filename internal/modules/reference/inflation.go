// Package reference holds the year-indexed reference tables for Türkiye:
// annual inflation, net minimum wage, vehicle list prices and the static
// price estimates used when every live source fails.
package reference

// Annual CPI inflation in percent (TÜİK). The latest year is an estimate.
var inflationRates = map[int]float64{
	2026: 30.00,
	2025: 45.00,
	2024: 52.00,
	2023: 64.77,
	2022: 72.31,
	2021: 36.08,
	2020: 14.60,
	2019: 11.84,
	2018: 20.30,
	2017: 11.92,
	2016: 8.53,
	2015: 8.81,
	2014: 8.17,
	2013: 7.40,
	2012: 6.16,
	2011: 10.45,
	2010: 6.40,
	2009: 6.53,
	2008: 10.06,
	2007: 8.39,
	2006: 9.65,
	2005: 7.72,
}

// InflationRate returns the annual inflation rate in percent for year
func InflationRate(year int) (float64, bool) {
	rate, ok := inflationRates[year]
	return rate, ok
}

// CumulativeInflation compounds every annual rate from start to end, inclusive,
// and returns the total change in percent. Years without data count as zero.
func CumulativeInflation(start, end int) float64 {
	cumulative := 1.0
	for year := start; year <= end; year++ {
		rate := inflationRates[year]
		cumulative *= 1 + rate/100
	}
	return (cumulative - 1) * 100
}
