package reference

// Tables exposes the year-indexed tables through methods so callers can
// depend on an interface.
type Tables struct{}

// MinimumWage returns the monthly net minimum wage for year
func (Tables) MinimumWage(year int) (float64, bool) { return MinimumWage(year) }

// InflationRate returns the annual inflation rate in percent for year
func (Tables) InflationRate(year int) (float64, bool) { return InflationRate(year) }

// Car finds a vehicle by id
func (Tables) Car(id string) (Car, bool) { return LookupCar(id) }
