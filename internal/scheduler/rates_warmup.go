package scheduler

import (
	"context"
	"time"

	"github.com/aristath/hindsight/internal/utils"
	"github.com/rs/zerolog"
)

// RatesWarmer refreshes cached rates
type RatesWarmer interface {
	Warmup(ctx context.Context, coins []string) int
}

// RatesWarmupJob keeps the price cache fresh so offline requests have recent values
type RatesWarmupJob struct {
	log     zerolog.Logger
	warmer  RatesWarmer
	coins   []string
	timeout time.Duration
}

// NewRatesWarmupJob creates a new RatesWarmupJob
func NewRatesWarmupJob(warmer RatesWarmer, coins []string, timeout time.Duration) *RatesWarmupJob {
	return &RatesWarmupJob{
		log:     zerolog.Nop(),
		warmer:  warmer,
		coins:   coins,
		timeout: timeout,
	}
}

// SetLogger sets the logger for the job
func (j *RatesWarmupJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *RatesWarmupJob) Name() string {
	return "rates_warmup"
}

// Run executes the warm-up. Unreachable sources are not a job failure.
func (j *RatesWarmupJob) Run() error {
	defer utils.OperationTimer("rates_warmup", j.timeout/2, j.log)()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	failed := j.warmer.Warmup(ctx, j.coins)

	j.log.Info().
		Int("coins", len(j.coins)).
		Int("failed", failed).
		Msg("Rates warm-up completed")
	return nil
}
