package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHTTPProbe_Online(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	probe := NewHTTPProbe(server.URL, time.Second, zerolog.Nop())
	assert.True(t, probe.IsOnline(context.Background()))
}

func TestHTTPProbe_ErrorStatusStillOnline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	probe := NewHTTPProbe(server.URL, time.Second, zerolog.Nop())
	assert.True(t, probe.IsOnline(context.Background()))
}

func TestHTTPProbe_Offline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	probe := NewHTTPProbe(url, time.Second, zerolog.Nop())
	assert.False(t, probe.IsOnline(context.Background()))
}

func TestStatic(t *testing.T) {
	assert.True(t, Static(true).IsOnline(context.Background()))
	assert.False(t, Static(false).IsOnline(context.Background()))
}
