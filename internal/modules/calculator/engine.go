// Package calculator turns a past and a current price into a comparison of
// what an amount invested on a given date would be worth today.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/aristath/hindsight/internal/modules/reference"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SourceReference labels results priced from the year-indexed tables
const SourceReference = "Reference Table"

// PastPrices answers historical point lookups
type PastPrices interface {
	LookupPast(key string, date time.Time) (historical.Point, error)
	LatestKnown(key string) (float64, bool)
}

// CurrentPrices resolves today's price of an asset
type CurrentPrices interface {
	ResolveCurrent(ctx context.Context, class domain.AssetClass, ref string) (domain.Quote, error)
}

// ReferenceTables provides the year-indexed tables
type ReferenceTables interface {
	MinimumWage(year int) (float64, bool)
	InflationRate(year int) (float64, bool)
	Car(id string) (reference.Car, bool)
}

// Request is one "what if I had bought" question
type Request struct {
	Amount  float64 // TRY
	Date    time.Time
	AssetID domain.AssetID
	SubID   string // Coin id, equity symbol or car id for assets that need one
}

// ComparisonResult is the answer to a Request
type ComparisonResult struct {
	AssetID          domain.AssetID `json:"asset_id"`
	SubID            string         `json:"sub_id,omitempty"`
	Label            string         `json:"label"`
	UnitsAcquired    *float64       `json:"units_acquired,omitempty"`
	Unit             string         `json:"unit,omitempty"`
	PastPrice        float64        `json:"past_price"`
	CurrentPrice     float64        `json:"current_price"`
	InitialAmount    float64        `json:"initial_amount"`
	CurrentValue     float64        `json:"current_value"`
	Profit           float64        `json:"profit"`
	PercentageChange float64        `json:"percentage_change"`
	Description      string         `json:"description"`
	PriceSource      string         `json:"price_source"`
	PastDate         string         `json:"past_date"`
	// Degraded is true when the current price is not a live or cached quote
	Degraded bool `json:"degraded"`
}

// Engine computes comparison results
type Engine struct {
	past    PastPrices
	current CurrentPrices
	tables  ReferenceTables
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock that decides "today" and the current year
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a calculation engine
func NewEngine(past PastPrices, current CurrentPrices, tables ReferenceTables, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		past:    past,
		current: current,
		tables:  tables,
		now:     time.Now,
		log:     log.With().Str("service", "calculator").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type pastLeg struct {
	price float64
	date  string
}

type currentLeg struct {
	price    float64
	source   string
	degraded bool
}

// Calculate answers req. Past and current prices are resolved concurrently.
func (e *Engine) Calculate(ctx context.Context, req Request) (*ComparisonResult, error) {
	if !domain.ValidPrice(req.Amount) {
		return nil, ErrInvalidAmount
	}

	now := e.now()
	if calendarDay(req.Date).After(calendarDay(now)) {
		return nil, ErrFutureDate
	}

	asset, ok := domain.LookupAsset(req.AssetID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssetClass, req.AssetID)
	}
	req.SubID = strings.TrimSpace(req.SubID)
	if asset.NeedsSelection() && req.SubID == "" {
		return nil, &SelectionError{Selection: asset.Selection}
	}

	var result *ComparisonResult
	var err error

	switch asset.Class {
	case domain.ClassFiatCurrency, domain.ClassPreciousMetal:
		result, err = e.calculateSeries(ctx, req, asset)
	case domain.ClassCryptoAsset:
		result, err = e.calculateCrypto(ctx, req)
	case domain.ClassListedEquity:
		result, err = e.calculateEquity(ctx, req, asset)
	case domain.ClassFixedTable:
		result, err = e.calculateFixed(req, asset, now.Year())
	default:
		err = fmt.Errorf("%w: class %q", ErrUnknownAssetClass, asset.Class)
	}
	if err != nil {
		e.log.Debug().Err(err).Str("asset", string(req.AssetID)).Str("sub_id", req.SubID).Msg("Calculation failed")
		return nil, err
	}

	result.finish()
	e.log.Debug().
		Str("asset", string(result.AssetID)).
		Float64("current_value", result.CurrentValue).
		Str("source", result.PriceSource).
		Bool("degraded", result.Degraded).
		Msg("Calculation complete")
	return result, nil
}

// calculateSeries handles fiat currencies and gold
func (e *Engine) calculateSeries(ctx context.Context, req Request, asset domain.Asset) (*ComparisonResult, error) {
	ref, scale := seriesRef(asset)

	pl, cl, err := e.resolveBoth(ctx,
		func() (pastLeg, error) {
			return e.lookupPast(asset.Label, asset.SeriesKey, req.Date, scale)
		},
		func(ctx context.Context) (currentLeg, error) {
			return e.resolveCurrent(ctx, asset.Class, ref, asset.SeriesKey, scale)
		},
	)
	if err != nil {
		return nil, err
	}

	return ratioResult(req, asset.Label, asset.Unit, 2, pl, cl), nil
}

// seriesRef maps a fiat or gold asset to its price reference and the factor
// that turns its series values into the asset's unit.
func seriesRef(asset domain.Asset) (string, float64) {
	switch asset.ID {
	case domain.AssetGold:
		return domain.GoldGram, 1
	case domain.AssetOunceGold:
		return domain.GoldOunce, domain.GramsPerTroyOunce
	}
	return asset.SeriesKey, 1
}

// calculateCrypto converts USD quoted coins through the USD rate of each period
func (e *Engine) calculateCrypto(ctx context.Context, req Request) (*ComparisonResult, error) {
	coin, _ := domain.LookupCrypto(req.SubID)
	usdQuoted := coin.Mode == domain.UsdDenominated

	pl, cl, err := e.resolveBoth(ctx,
		func() (pastLeg, error) {
			leg, err := e.lookupPast(coin.Name, coin.ID, req.Date, 1)
			if err != nil || !usdQuoted {
				return leg, err
			}
			usd, err := e.lookupPast("US Dollar", domain.SeriesUSD, req.Date, 1)
			if err != nil {
				return pastLeg{}, err
			}
			leg.price *= usd.price
			return leg, nil
		},
		func(ctx context.Context) (currentLeg, error) {
			leg, err := e.resolveCurrent(ctx, domain.ClassCryptoAsset, coin.ID, coin.ID, 1)
			if err != nil || !usdQuoted {
				return leg, err
			}
			usd, err := e.resolveCurrent(ctx, domain.ClassFiatCurrency, domain.SeriesUSD, domain.SeriesUSD, 1)
			if err != nil {
				return currentLeg{}, err
			}
			leg.price *= usd.price
			leg.degraded = leg.degraded || usd.degraded
			return leg, nil
		},
	)
	if err != nil {
		return nil, err
	}

	result := ratioResult(req, coin.Name, coin.Symbol, 4, pl, cl)
	result.SubID = coin.ID
	return result, nil
}

// calculateEquity handles Borsa Istanbul listings
func (e *Engine) calculateEquity(ctx context.Context, req Request, asset domain.Asset) (*ComparisonResult, error) {
	equity, _ := domain.LookupEquity(req.SubID)
	symbol := equity.Symbol

	pl, cl, err := e.resolveBoth(ctx,
		func() (pastLeg, error) {
			return e.lookupPast(equity.Name, symbol, req.Date, 1)
		},
		func(ctx context.Context) (currentLeg, error) {
			return e.resolveCurrent(ctx, domain.ClassListedEquity, symbol, symbol, 1)
		},
	)
	if err != nil {
		return nil, err
	}

	result := ratioResult(req, equity.Name, asset.Unit, 2, pl, cl)
	result.SubID = symbol
	return result, nil
}

// calculateFixed handles assets priced by calendar year
func (e *Engine) calculateFixed(req Request, asset domain.Asset, currentYear int) (*ComparisonResult, error) {
	pastYear := req.Date.Year()
	amount := req.Amount
	result := &ComparisonResult{
		AssetID:       asset.ID,
		Label:         asset.Label,
		InitialAmount: amount,
		PriceSource:   SourceReference,
		PastDate:      strconv.Itoa(pastYear),
	}

	switch asset.ID {
	case domain.AssetMinimumWage:
		pastWage, ok := e.tables.MinimumWage(pastYear)
		if !ok {
			return nil, yearRangeError(asset.Label, string(asset.ID), pastYear, "")
		}
		currentWage, ok := e.tables.MinimumWage(currentYear)
		if !ok {
			return nil, fmt.Errorf("%w: minimum wage for %d", ErrNoCurrentRate, currentYear)
		}
		result.PastPrice = pastWage
		result.CurrentPrice = currentWage
		result.CurrentValue = amount / pastWage * currentWage
		result.Description = fmt.Sprintf("%.0f TRY was %.1f minimum wages in %d, which is %.0f TRY today.",
			amount, amount/pastWage, pastYear, result.CurrentValue)

	case domain.AssetCar:
		car, ok := e.tables.Car(req.SubID)
		if !ok {
			return nil, &SelectionError{Selection: asset.Selection, Value: req.SubID}
		}
		earliest := ""
		if years := car.Years(); len(years) > 0 {
			earliest = strconv.Itoa(years[0])
		}
		pastPrice, ok := car.Price(pastYear)
		if !ok {
			return nil, yearRangeError(car.Name, car.ID, pastYear, earliest)
		}
		currentPrice, ok := car.Price(currentYear)
		if !ok {
			return nil, fmt.Errorf("%w: %s price for %d", ErrNoCurrentRate, car.ID, currentYear)
		}
		result.Label = car.Name
		result.SubID = car.ID
		result.PastPrice = pastPrice
		result.CurrentPrice = currentPrice
		result.CurrentValue = amount / pastPrice * currentPrice
		result.Description = fmt.Sprintf("%.0f TRY in %d would have bought %.2f of a %s (then %.0f TRY), worth %.0f TRY today.",
			amount, pastYear, amount/pastPrice, car.Name, pastPrice, result.CurrentValue)

	case domain.AssetInflation:
		if _, ok := e.tables.InflationRate(pastYear); !ok {
			return nil, yearRangeError(asset.Label, string(asset.ID), pastYear, "")
		}
		currentRate, ok := e.tables.InflationRate(currentYear)
		if !ok {
			return nil, fmt.Errorf("%w: inflation for %d", ErrNoCurrentRate, currentYear)
		}
		// The latest annual rate is compounded flat over the whole span
		factor := math.Pow(1+currentRate/100, float64(currentYear-pastYear))
		result.PastPrice = 1
		result.CurrentPrice = factor
		result.CurrentValue = amount * factor
		result.Description = fmt.Sprintf("The purchasing power of %.0f TRY in %d is about %.0f TRY today.",
			amount, pastYear, result.CurrentValue)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssetClass, asset.ID)
	}

	return result, nil
}

func yearRangeError(label, key string, year int, earliest string) error {
	return &DataRangeError{Label: label, Key: key, Date: strconv.Itoa(year), Earliest: earliest}
}

// resolveBoth runs the past and current resolution concurrently.
// The first failure cancels the other.
func (e *Engine) resolveBoth(
	ctx context.Context,
	past func() (pastLeg, error),
	current func(ctx context.Context) (currentLeg, error),
) (pastLeg, currentLeg, error) {
	var pl pastLeg
	var cl currentLeg

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pl, err = past()
		return err
	})
	g.Go(func() error {
		var err error
		cl, err = current(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return pastLeg{}, currentLeg{}, err
	}
	return pl, cl, nil
}

// lookupPast finds the series value for date, scaled to the asset's unit
func (e *Engine) lookupPast(label, key string, date time.Time, scale float64) (pastLeg, error) {
	point, err := e.past.LookupPast(key, date)
	if err != nil {
		var nf *historical.NotFoundError
		if errors.As(err, &nf) {
			return pastLeg{}, &DataRangeError{Label: label, Key: key, Date: nf.Date, Earliest: nf.Earliest}
		}
		return pastLeg{}, fmt.Errorf("past price for %s: %w", key, err)
	}
	return pastLeg{price: point.Value * scale, date: point.Date}, nil
}

// resolveCurrent asks the resolver for today's price. A static estimate is
// replaced by the latest historical value when the series has one.
func (e *Engine) resolveCurrent(ctx context.Context, class domain.AssetClass, ref, seriesKey string, scale float64) (currentLeg, error) {
	quote, err := e.current.ResolveCurrent(ctx, class, ref)
	if err == nil && !quote.IsFallback() {
		return currentLeg{price: quote.Value, source: quote.Source}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return currentLeg{}, ctxErr
	}

	if latest, ok := e.past.LatestKnown(seriesKey); ok && domain.ValidPrice(latest) {
		e.log.Info().
			Str("class", string(class)).
			Str("ref", ref).
			Float64("value", latest*scale).
			Msg("Using latest historical price for current price")
		return currentLeg{price: latest * scale, source: domain.SourceLatestHistorical, degraded: true}, nil
	}

	if err != nil {
		return currentLeg{}, fmt.Errorf("%w: %s %s: %w", ErrNoCurrentRate, class, ref, err)
	}
	return currentLeg{price: quote.Value, source: quote.Source, degraded: true}, nil
}

// ratioResult builds the result for assets bought in units at the past price
func ratioResult(req Request, label, unit string, precision int, pl pastLeg, cl currentLeg) *ComparisonResult {
	units := req.Amount / pl.price
	value := units * cl.price

	return &ComparisonResult{
		AssetID:       req.AssetID,
		Label:         label,
		UnitsAcquired: &units,
		Unit:          unit,
		PastPrice:     pl.price,
		CurrentPrice:  cl.price,
		InitialAmount: req.Amount,
		CurrentValue:  value,
		Description: fmt.Sprintf("%.0f TRY (%s %s) bought on %s would be worth %.0f TRY today.",
			req.Amount, strconv.FormatFloat(units, 'f', precision, 64), unit,
			req.Date.Format(historical.DateLayout), value),
		PriceSource: cl.source,
		PastDate:    pl.date,
		Degraded:    cl.degraded,
	}
}

func (r *ComparisonResult) finish() {
	r.Profit = r.CurrentValue - r.InitialAmount
	r.PercentageChange = r.Profit / r.InitialAmount * 100
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
