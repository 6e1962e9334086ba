// Package connectivity reports whether the live price sources are reachable.
package connectivity

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Probe answers whether the network is reachable right now.
type Probe interface {
	IsOnline(ctx context.Context) bool
}

// HTTPProbe issues a HEAD request against a well-known endpoint.
// Any response, whatever its status, counts as online.
type HTTPProbe struct {
	client *resty.Client
	url    string
	log    zerolog.Logger
}

// NewHTTPProbe creates a probe against url bounded by timeout.
func NewHTTPProbe(url string, timeout time.Duration, log zerolog.Logger) *HTTPProbe {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)

	return &HTTPProbe{
		client: client,
		url:    url,
		log:    log.With().Str("component", "connectivity").Logger(),
	}
}

// IsOnline reports whether the probe endpoint answered.
func (p *HTTPProbe) IsOnline(ctx context.Context) bool {
	_, err := p.client.R().SetContext(ctx).Head(p.url)
	if err != nil {
		p.log.Debug().Err(err).Str("url", p.url).Msg("Connectivity probe failed")
		return false
	}
	return true
}

// Static is a fixed probe answer, used when reachability is known up front.
type Static bool

// IsOnline returns the fixed answer.
func (s Static) IsOnline(context.Context) bool {
	return bool(s)
}
