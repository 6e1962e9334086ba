// Package fetcher wraps live source calls with a connectivity check and a last-good cache.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/hindsight/internal/clientdata"
	"github.com/aristath/hindsight/internal/connectivity"
	"github.com/rs/zerolog"
)

// Store persists the last good payload per key.
type Store interface {
	// GetIfFresh returns nil, nil when key is missing or older than maxAge.
	// A maxAge of zero accepts any age.
	GetIfFresh(key string, maxAge time.Duration) (*clientdata.Entry, error)
	Put(key string, payload []byte) error
}

// Loader performs the live retrieval and decoding for one key.
type Loader[T any] func(ctx context.Context) (T, error)

// Fetcher holds the collaborators shared by every cached fetch.
type Fetcher struct {
	store  Store
	probe  connectivity.Probe
	maxAge time.Duration
	log    zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxAge treats cache entries older than maxAge as missing.
// Zero, the default, accepts entries of any age.
func WithMaxAge(maxAge time.Duration) Option {
	return func(f *Fetcher) { f.maxAge = maxAge }
}

// New creates a Fetcher.
func New(store Store, probe connectivity.Probe, log zerolog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		store: store,
		probe: probe,
		log:   log.With().Str("component", "cached_fetcher").Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the live value for key when the network is up and load succeeds,
// storing it as the new cache entry. Otherwise it serves the cached value.
//
// A failed decode or a failed cache write never replaces a stored entry.
func Fetch[T any](ctx context.Context, f *Fetcher, key string, load Loader[T]) (T, error) {
	var zero T

	online := f.probe.IsOnline(ctx)

	var liveErr error
	if online {
		value, err := load(ctx)
		if err == nil {
			f.remember(key, value)
			return value, nil
		}
		liveErr = err

		var decodeErr *DecodeError
		event := f.log.Warn().Err(err).Str("key", key)
		if errors.As(err, &decodeErr) {
			event = event.Bool("decode_error", true)
		}
		event.Msg("Live fetch failed, falling back to cache")
	}

	if value, ok := cached[T](f, key); ok {
		return value, nil
	}

	if !online {
		return zero, fmt.Errorf("%s: %w", key, ErrNetworkUnavailable)
	}
	return zero, fmt.Errorf("%s: %w: %w", key, ErrNoCachedData, liveErr)
}

func (f *Fetcher) remember(key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("Failed to encode payload for cache")
		return
	}
	if err := f.store.Put(key, payload); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("Failed to write cache entry")
	}
}

func cached[T any](f *Fetcher, key string) (T, bool) {
	var value T

	entry, err := f.store.GetIfFresh(key, f.maxAge)
	if err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("Failed to read cache entry")
		return value, false
	}
	if entry == nil {
		f.log.Debug().Str("key", key).Dur("max_age", f.maxAge).Msg("No fresh cache entry")
		return value, false
	}

	if err := json.Unmarshal(entry.Payload, &value); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("Cached payload unreadable")
		return value, false
	}

	f.log.Info().Str("key", key).Time("saved_at", entry.SavedAt).Msg("Serving cached payload")
	return value, true
}
