// Package prices resolves the current price of an asset by walking an ordered
// chain of live sources and ending at a static estimate.
package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/rs/zerolog"
)

// ErrResolutionExhausted means every source failed and no static estimate exists.
var ErrResolutionExhausted = errors.New("price resolution exhausted")

// PriceSource is one live (or cached) provider of current prices.
type PriceSource interface {
	// Name is the provenance label attached to quotes from this source
	Name() string
	Fetch(ctx context.Context, ref string) (domain.Quote, error)
}

// Estimator provides the static estimate of last resort.
type Estimator interface {
	Estimate(class domain.AssetClass, ref string, year int) (float64, bool)
}

// Resolver holds one ordered source chain per asset class.
type Resolver struct {
	chains    map[domain.AssetClass][]PriceSource
	estimates Estimator
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the clock used for quote timestamps and the estimate year.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a resolver with no chains registered.
func NewResolver(estimates Estimator, log zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		chains:    make(map[domain.AssetClass][]PriceSource),
		estimates: estimates,
		now:       time.Now,
		log:       log.With().Str("service", "price_resolver").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends sources to the chain for class, in priority order.
// Register is not safe to call concurrently with ResolveCurrent.
func (r *Resolver) Register(class domain.AssetClass, sources ...PriceSource) {
	r.chains[class] = append(r.chains[class], sources...)
}

// Sources returns the names of the chain for class, in priority order.
func (r *Resolver) Sources(class domain.AssetClass) []string {
	names := make([]string, 0, len(r.chains[class]))
	for _, s := range r.chains[class] {
		names = append(names, s.Name())
	}
	return names
}

// ResolveCurrent returns the first positive quote from the chain for class.
// Later sources are not consulted once one succeeds. When the whole chain fails
// the static estimate is returned, labeled domain.SourceFallback.
func (r *Resolver) ResolveCurrent(ctx context.Context, class domain.AssetClass, ref string) (domain.Quote, error) {
	for _, source := range r.chains[class] {
		quote, err := source.Fetch(ctx, ref)
		if err != nil {
			r.log.Warn().
				Err(err).
				Str("class", string(class)).
				Str("ref", ref).
				Str("source", source.Name()).
				Msg("Price source failed, trying next")
			continue
		}
		if !quote.Valid() {
			r.log.Warn().
				Float64("value", quote.Value).
				Str("class", string(class)).
				Str("ref", ref).
				Str("source", source.Name()).
				Msg("Price source returned unusable value, trying next")
			continue
		}

		if quote.Source == "" {
			quote.Source = source.Name()
		}
		if quote.At.IsZero() {
			quote.At = r.now()
		}
		return quote, nil
	}

	now := r.now()
	if value, ok := r.estimates.Estimate(class, ref, now.Year()); ok && domain.ValidPrice(value) {
		r.log.Warn().
			Str("class", string(class)).
			Str("ref", ref).
			Float64("value", value).
			Msg("All price sources failed, using static estimate")
		return domain.Quote{Value: value, Source: domain.SourceFallback, At: now}, nil
	}

	r.log.Error().
		Str("class", string(class)).
		Str("ref", ref).
		Msg("No price source or estimate available")
	return domain.Quote{}, fmt.Errorf("%w: %s %s", ErrResolutionExhausted, class, ref)
}
