// Package rates serves the current-rates overview and single price lookups.
package rates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultCryptoID is shown when the overview caller does not pick a coin
const DefaultCryptoID = "bitcoin"

// CurrentResolver resolves today's price of an asset
type CurrentResolver interface {
	ResolveCurrent(ctx context.Context, class domain.AssetClass, ref string) (domain.Quote, error)
}

// PastLookup answers historical point lookups
type PastLookup interface {
	LookupPast(key string, date time.Time) (historical.Point, error)
	LatestKnown(key string) (float64, bool)
}

// Overview is the set of headline rates, each with its own provenance
type Overview struct {
	USD      domain.Quote `json:"usd"`
	EUR      domain.Quote `json:"eur"`
	Gold     domain.Quote `json:"gold"` // TRY per gram
	Crypto   domain.Quote `json:"crypto"`
	CryptoID string       `json:"crypto_id"`
	// Unavailable names the quotes (usd, eur, gold, crypto) that had neither
	// a live, cached, historical nor estimated value. They are left zero.
	Unavailable []string `json:"unavailable,omitempty"`
}

// Service resolves rates for the dashboard
type Service struct {
	resolver CurrentResolver
	past     PastLookup
	log      zerolog.Logger
}

// NewService creates a rates service
func NewService(resolver CurrentResolver, past PastLookup, log zerolog.Logger) *Service {
	return &Service{
		resolver: resolver,
		past:     past,
		log:      log.With().Str("service", "rates").Logger(),
	}
}

// Overview resolves USD, EUR, gram gold and one coin concurrently. A quote
// that only reached the static estimate, or nothing at all, is replaced by the
// latest value of its historical series. It fails only when no quote could be
// resolved or ctx is done.
func (s *Service) Overview(ctx context.Context, cryptoID string) (*Overview, error) {
	if cryptoID == "" {
		cryptoID = DefaultCryptoID
	}
	out := &Overview{CryptoID: cryptoID}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	resolve := func(name string, dst *domain.Quote, class domain.AssetClass, ref, seriesKey string) {
		g.Go(func() error {
			q, err := s.resolveWithHistory(ctx, class, ref, seriesKey)
			if err != nil {
				s.log.Warn().Err(err).Str("quote", name).Str("ref", ref).Msg("Overview quote unavailable")
				mu.Lock()
				out.Unavailable = append(out.Unavailable, name)
				errs = append(errs, fmt.Errorf("%s %s: %w", class, ref, err))
				mu.Unlock()
				return nil
			}
			*dst = q
			return nil
		})
	}

	resolve("usd", &out.USD, domain.ClassFiatCurrency, string(domain.CurrencyUSD), domain.SeriesUSD)
	resolve("eur", &out.EUR, domain.ClassFiatCurrency, string(domain.CurrencyEUR), domain.SeriesEUR)
	resolve("gold", &out.Gold, domain.ClassPreciousMetal, domain.GoldGram, domain.SeriesGold)
	resolve("crypto", &out.Crypto, domain.ClassCryptoAsset, cryptoID, cryptoID)
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to resolve rates overview: %w", err)
	}
	if len(errs) == 4 {
		return nil, fmt.Errorf("failed to resolve rates overview: %w", errors.Join(errs...))
	}
	sort.Strings(out.Unavailable)
	return out, nil
}

// resolveWithHistory resolves a current price, preferring the latest
// historical value over a static estimate or an exhausted chain
func (s *Service) resolveWithHistory(ctx context.Context, class domain.AssetClass, ref, seriesKey string) (domain.Quote, error) {
	q, err := s.resolver.ResolveCurrent(ctx, class, ref)
	if err == nil && !q.IsFallback() {
		return q, nil
	}
	if latest, ok := s.past.LatestKnown(seriesKey); ok {
		return domain.Quote{Value: latest, Source: domain.SourceLatestHistorical, At: time.Now()}, nil
	}
	return q, err
}

// Current resolves a single current price
func (s *Service) Current(ctx context.Context, class domain.AssetClass, ref string) (domain.Quote, error) {
	if class == domain.ClassListedEquity {
		ref = domain.NormalizeEquitySymbol(ref)
	}
	return s.resolver.ResolveCurrent(ctx, class, ref)
}

// ResolvePastPrice looks up the price of a series on date
func (s *Service) ResolvePastPrice(key string, date time.Time) (historical.Point, error) {
	return s.past.LookupPast(key, date)
}

// Warmup resolves the headline rates and the given coins so their cache
// entries are fresh. Failures are logged and counted, not returned.
func (s *Service) Warmup(ctx context.Context, coins []string) int {
	type target struct {
		class domain.AssetClass
		ref   string
	}
	targets := []target{
		{domain.ClassFiatCurrency, string(domain.CurrencyUSD)},
		{domain.ClassFiatCurrency, string(domain.CurrencyEUR)},
		{domain.ClassPreciousMetal, domain.GoldGram},
	}
	for _, coin := range coins {
		targets = append(targets, target{domain.ClassCryptoAsset, coin})
	}

	failed := 0
	for _, t := range targets {
		q, err := s.resolver.ResolveCurrent(ctx, t.class, t.ref)
		if err != nil || q.IsFallback() {
			failed++
			s.log.Warn().Err(err).Str("class", string(t.class)).Str("ref", t.ref).Msg("Warm-up could not reach a live source")
			continue
		}
		s.log.Debug().Str("ref", t.ref).Float64("value", q.Value).Str("source", q.Source).Msg("Warmed rate")
	}
	return failed
}
