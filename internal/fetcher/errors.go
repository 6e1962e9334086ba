package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkUnavailable means the probe reported offline and nothing was cached.
	ErrNetworkUnavailable = errors.New("network unavailable and no cached data")
	// ErrNoCachedData means the live call failed and nothing was cached.
	ErrNoCachedData = errors.New("no cached data")
)

// DecodeError reports a response that arrived but could not be parsed.
type DecodeError struct {
	Source string
	Err    error
}

// NewDecodeError wraps err as a decode failure of source.
func NewDecodeError(source string, err error) *DecodeError {
	return &DecodeError{Source: source, Err: err}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response from a live source.
type StatusError struct {
	Source string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Source, e.Code)
}

// ErrTimeout means a bounded loader did not settle in time.
var ErrTimeout = errors.New("source did not answer in time")
