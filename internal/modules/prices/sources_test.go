package prices

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/hindsight/internal/clientdata"
	"github.com/aristath/hindsight/internal/connectivity"
	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/fetcher"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]clientdata.Entry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]clientdata.Entry)}
}

func (s *memoryStore) Get(key string) (*clientdata.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *memoryStore) GetIfFresh(key string, _ time.Duration) (*clientdata.Entry, error) {
	return s.Get(key)
}

func (s *memoryStore) Put(key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = clientdata.Entry{Key: key, Payload: payload, SavedAt: fixedNow}
	return nil
}

func newTestFetcher(online bool) (*fetcher.Fetcher, *memoryStore) {
	store := newMemoryStore()
	return fetcher.New(store, connectivity.Static(online), zerolog.Nop()), store
}

type stubRates struct {
	rates domain.CurrencyRates
	err   error
	calls atomic.Int32
}

func (s *stubRates) GetRates(context.Context) (domain.CurrencyRates, error) {
	s.calls.Add(1)
	return s.rates, s.err
}

type stubCoins map[string]float64

func (s stubCoins) Price(_ context.Context, id string) (float64, error) {
	p, ok := s[id]
	if !ok {
		return 0, fetcher.NewDecodeError("coingecko", errors.New("missing"))
	}
	return p, nil
}

type blockingEquity struct {
	release chan struct{}
}

func (b blockingEquity) LastPrice(context.Context, string) (float64, error) {
	<-b.release
	return 999, nil
}

type stubEquity float64

func (s stubEquity) LastPrice(context.Context, string) (float64, error) {
	return float64(s), nil
}

func TestCurrencySource(t *testing.T) {
	f, _ := newTestFetcher(true)
	client := &stubRates{rates: domain.CurrencyRates{USD: 34.1, EUR: 37.2}}
	src := NewTCMBSource(f, client)

	q, err := src.Fetch(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, 37.2, q.Value)
	assert.Equal(t, LabelTCMB, q.Source)

	_, err = src.Fetch(context.Background(), "GBP")
	assert.Error(t, err)
}

func TestFiatChain_OfficialFailsGlobalServes(t *testing.T) {
	f, _ := newTestFetcher(true)
	official := &stubRates{err: errors.New("connection refused")}
	global := &stubRates{rates: domain.CurrencyRates{USD: 40, EUR: 50}}

	r := newTestResolver()
	r.Register(domain.ClassFiatCurrency, NewTCMBSource(f, official), NewExchangeRateSource(f, global))

	q, err := r.ResolveCurrent(context.Background(), domain.ClassFiatCurrency, "USD")
	require.NoError(t, err)
	assert.Equal(t, 40.0, q.Value)
	assert.Equal(t, LabelExchangeRate, q.Source)
}

func TestFiatChain_CachedOfficialRateBeatsLiveGlobal(t *testing.T) {
	f, _ := newTestFetcher(true)
	official := &stubRates{rates: domain.CurrencyRates{USD: 33, EUR: 36}}
	global := &stubRates{rates: domain.CurrencyRates{USD: 40, EUR: 50}}

	r := newTestResolver()
	r.Register(domain.ClassFiatCurrency, NewTCMBSource(f, official), NewExchangeRateSource(f, global))

	_, err := r.ResolveCurrent(context.Background(), domain.ClassFiatCurrency, "USD")
	require.NoError(t, err)

	official.err = errors.New("maintenance")
	q, err := r.ResolveCurrent(context.Background(), domain.ClassFiatCurrency, "USD")
	require.NoError(t, err)
	assert.Equal(t, 33.0, q.Value)
	assert.Equal(t, LabelTCMB, q.Source)
	assert.Equal(t, int32(0), global.calls.Load())
}

func TestGoldSource(t *testing.T) {
	f, _ := newTestFetcher(true)
	coins := stubCoins{"pax-gold": 2000}

	r := newTestResolver()
	r.Register(domain.ClassFiatCurrency, &stubSource{name: LabelTCMB, value: 31.1035})
	r.Register(domain.ClassPreciousMetal, NewGoldSource(f, coins, r))

	gram, err := r.ResolveCurrent(context.Background(), domain.ClassPreciousMetal, domain.GoldGram)
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, gram.Value, 1e-9)
	assert.Equal(t, LabelPaxGold, gram.Source)

	ounce, err := r.ResolveCurrent(context.Background(), domain.ClassPreciousMetal, domain.GoldOunce)
	require.NoError(t, err)
	assert.InDelta(t, 2000*31.1035, ounce.Value, 1e-9)
}

func TestGoldSource_UsesEstimatedUSDRateWhenFeedsFail(t *testing.T) {
	f, _ := newTestFetcher(true)

	r := newTestResolver()
	r.Register(domain.ClassFiatCurrency, &stubSource{name: LabelTCMB, err: errors.New("down")})
	r.Register(domain.ClassPreciousMetal, NewGoldSource(f, stubCoins{"pax-gold": 2000}, r))

	q, err := r.ResolveCurrent(context.Background(), domain.ClassPreciousMetal, domain.GoldGram)
	require.NoError(t, err)
	// 2024 USD estimate is 34.50
	assert.InDelta(t, 2000*34.50/31.1035, q.Value, 1e-9)
	assert.Equal(t, LabelPaxGold, q.Source)
}

func TestGoldSource_UnknownUnit(t *testing.T) {
	f, _ := newTestFetcher(true)
	src := NewGoldSource(f, stubCoins{"pax-gold": 2000}, newTestResolver())

	_, err := src.Fetch(context.Background(), "kilo")
	assert.Error(t, err)
}

func TestCryptoSource_OfflineServesCache(t *testing.T) {
	onlineFetcher, store := newTestFetcher(true)
	_, err := NewCryptoSource(onlineFetcher, stubCoins{"bitcoin": 65000}).Fetch(context.Background(), "bitcoin")
	require.NoError(t, err)

	offline := fetcher.New(store, connectivity.Static(false), zerolog.Nop())
	q, err := NewCryptoSource(offline, stubCoins{}).Fetch(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 65000.0, q.Value)
}

func TestEquitySource_NeverSettlingLoaderFallsThroughToEstimate(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	f, _ := newTestFetcher(true)
	r := newTestResolver()
	r.Register(domain.ClassListedEquity, NewEquitySource(f, blockingEquity{release: release}, 20*time.Millisecond))

	start := time.Now()
	q, err := r.ResolveCurrent(context.Background(), domain.ClassListedEquity, "GARAN")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, q.IsFallback())
	assert.Equal(t, 120.0, q.Value)
}

func TestEquitySource_NormalizesSymbol(t *testing.T) {
	f, store := newTestFetcher(true)
	src := NewEquitySource(f, stubEquity(291.75), time.Second)

	q, err := src.Fetch(context.Background(), "thyao")
	require.NoError(t, err)
	assert.Equal(t, 291.75, q.Value)
	assert.Equal(t, LabelBigPara, q.Source)

	entry, _ := store.Get("bigpara:THYAO.IS")
	assert.NotNil(t, entry)
}
