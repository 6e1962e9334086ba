package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestOperationTimer_WarnsOnSlowOperation(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.WarnLevel)

	done := OperationTimer("slow_op", time.Nanosecond, log)
	time.Sleep(2 * time.Millisecond)
	d := done()

	assert.Greater(t, d, time.Duration(0))
	assert.Contains(t, buf.String(), "Slow operation detected")
	assert.Contains(t, buf.String(), "slow_op")
}

func TestOperationTimer_ZeroThresholdNeverWarns(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.WarnLevel)

	OperationTimer("op", 0, log)()

	assert.Empty(t, buf.String())
}
