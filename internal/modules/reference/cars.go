package reference

import "sort"

// Car is a vehicle with its yearly list price in TRY
type Car struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Prices map[int]float64 `json:"prices"`
}

// Price returns the list price for year
func (c Car) Price(year int) (float64, bool) {
	p, ok := c.Prices[year]
	return p, ok
}

// Years returns the years with a list price, ascending
func (c Car) Years() []int {
	years := make([]int, 0, len(c.Prices))
	for y := range c.Prices {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

var cars = []Car{
	{
		ID:   "fiat-egea",
		Name: "Fiat Egea",
		Prices: map[int]float64{
			2015: 42000, 2016: 46000, 2017: 55000, 2018: 72000, 2019: 95000, 2020: 145000,
			2021: 230000, 2022: 520000, 2023: 850000, 2024: 1050000, 2025: 1250000, 2026: 1480000,
		},
	},
	{
		ID:   "renault-clio",
		Name: "Renault Clio",
		Prices: map[int]float64{
			2015: 45000, 2016: 50000, 2017: 58000, 2018: 76000, 2019: 100000, 2020: 155000,
			2021: 245000, 2022: 560000, 2023: 900000, 2024: 1150000, 2025: 1350000, 2026: 1600000,
		},
	},
	{
		ID:   "toyota-corolla",
		Name: "Toyota Corolla",
		Prices: map[int]float64{
			2015: 70000, 2016: 78000, 2017: 90000, 2018: 120000, 2019: 160000, 2020: 230000,
			2021: 360000, 2022: 800000, 2023: 1300000, 2024: 1600000, 2025: 1850000, 2026: 2150000,
		},
	},
	{
		ID:   "vw-passat",
		Name: "Volkswagen Passat",
		Prices: map[int]float64{
			2015: 110000, 2016: 125000, 2017: 145000, 2018: 200000, 2019: 280000, 2020: 420000,
			2021: 650000, 2022: 1500000, 2023: 2400000, 2024: 2900000, 2025: 3300000, 2026: 3800000,
		},
	},
}

// Cars returns the vehicle list
func Cars() []Car {
	out := make([]Car, len(cars))
	copy(out, cars)
	return out
}

// LookupCar finds a vehicle by id
func LookupCar(id string) (Car, bool) {
	for _, c := range cars {
		if c.ID == id {
			return c, true
		}
	}
	return Car{}, false
}
