package main

import (
	"path/filepath"
	"testing"

	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_EmbeddedToMsgpack(t *testing.T) {
	out := filepath.Join(t.TempDir(), "historical.msgpack")

	require.NoError(t, run("", out, zerolog.Nop()))

	converted, err := historical.LoadFile(out)
	require.NoError(t, err)
	embedded, err := historical.LoadEmbedded()
	require.NoError(t, err)
	assert.Equal(t, embedded.Keys(), converted.Keys())
}

func TestRun_UnsupportedOutput(t *testing.T) {
	err := run("", filepath.Join(t.TempDir(), "historical.csv"), zerolog.Nop())
	assert.Error(t, err)
}

func TestRun_SummaryOnly(t *testing.T) {
	assert.NoError(t, run("", "", zerolog.Nop()))
}
