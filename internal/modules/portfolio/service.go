package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/modules/calculator"
	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// valuationConcurrency bounds how many items are revalued at once
const valuationConcurrency = 4

// Calculator answers comparison requests
type Calculator interface {
	Calculate(ctx context.Context, req calculator.Request) (*calculator.ComparisonResult, error)
}

// Store persists portfolio items
type Store interface {
	Add(item *Item) error
	List() ([]Item, error)
	Get(id string) (*Item, error)
	Remove(id string) error
}

// AddRequest describes a new holding
type AddRequest struct {
	AssetID string  `json:"asset_id"`
	Amount  float64 `json:"amount"`
	Date    string  `json:"date"`
	SubID   string  `json:"sub_id,omitempty"`
}

// ItemValuation is one revalued item. Exactly one of Result and Error is set.
type ItemValuation struct {
	Item   Item                         `json:"item"`
	Result *calculator.ComparisonResult `json:"result,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

// Valuation is the whole portfolio revalued today. Totals cover only the
// items that could be valued.
type Valuation struct {
	Items            []ItemValuation `json:"items"`
	TotalInvested    float64         `json:"total_invested"`
	TotalValue       float64         `json:"total_value"`
	Profit           float64         `json:"profit"`
	PercentageChange float64         `json:"percentage_change"`
	Failed           int             `json:"failed"`
}

// Service orchestrates portfolio operations
type Service struct {
	store      Store
	calculator Calculator
	log        zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(store Store, calc Calculator, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		calculator: calc,
		log:        log.With().Str("service", "portfolio").Logger(),
	}
}

// Add validates the holding by calculating it once, then stores it with the
// units it acquired.
func (s *Service) Add(ctx context.Context, req AddRequest) (*Item, *calculator.ComparisonResult, error) {
	date, err := time.Parse(historical.DateLayout, req.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}

	result, err := s.calculator.Calculate(ctx, calculator.Request{
		Amount:  req.Amount,
		Date:    date,
		AssetID: domain.AssetID(req.AssetID),
		SubID:   req.SubID,
	})
	if err != nil {
		return nil, nil, err
	}

	item := &Item{
		AssetID:       result.AssetID,
		InitialAmount: req.Amount,
		Date:          date.Format(historical.DateLayout),
	}
	if result.UnitsAcquired != nil {
		item.Units = *result.UnitsAcquired
	}
	switch item.AssetID {
	case domain.AssetCrypto:
		item.CryptoID = result.SubID
	case domain.AssetStock:
		item.EquitySymbol = result.SubID
	case domain.AssetCar:
		item.CarID = result.SubID
	}

	if err := s.store.Add(item); err != nil {
		return nil, nil, err
	}
	return item, result, nil
}

// List returns every stored item
func (s *Service) List() ([]Item, error) {
	return s.store.List()
}

// Remove deletes a stored item
func (s *Service) Remove(id string) error {
	return s.store.Remove(id)
}

// Valuate revalues every item. A failing item is reported on its own entry
// and does not fail the whole valuation.
func (s *Service) Valuate(ctx context.Context) (*Valuation, error) {
	items, err := s.store.List()
	if err != nil {
		return nil, err
	}

	out := &Valuation{Items: make([]ItemValuation, len(items))}

	var g errgroup.Group
	g.SetLimit(valuationConcurrency)
	for i, item := range items {
		g.Go(func() error {
			out.Items[i] = s.valuate(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	// Totals are money, summed exactly and rounded to kuruş once
	invested, value := decimal.Zero, decimal.Zero
	for _, v := range out.Items {
		if v.Result == nil {
			out.Failed++
			continue
		}
		invested = invested.Add(decimal.NewFromFloat(v.Result.InitialAmount))
		value = value.Add(decimal.NewFromFloat(v.Result.CurrentValue))
	}
	profit := value.Sub(invested)

	out.TotalInvested = invested.Round(2).InexactFloat64()
	out.TotalValue = value.Round(2).InexactFloat64()
	out.Profit = profit.Round(2).InexactFloat64()
	if invested.IsPositive() {
		out.PercentageChange = profit.Div(invested).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	s.log.Debug().
		Int("items", len(items)).
		Int("failed", out.Failed).
		Float64("total_value", out.TotalValue).
		Msg("Portfolio valuated")
	return out, nil
}

func (s *Service) valuate(ctx context.Context, item Item) ItemValuation {
	v := ItemValuation{Item: item}

	date, err := time.Parse(historical.DateLayout, item.Date)
	if err != nil {
		v.Error = "The stored date of this item is invalid."
		return v
	}

	result, err := s.calculator.Calculate(ctx, calculator.Request{
		Amount:  item.InitialAmount,
		Date:    date,
		AssetID: item.AssetID,
		SubID:   item.SubID(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("id", item.ID).Msg("Failed to valuate portfolio item")
		v.Error = calculator.UserMessage(err)
		return v
	}

	v.Result = result
	return v
}
