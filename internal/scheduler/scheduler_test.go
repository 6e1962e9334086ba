package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aristath/hindsight/internal/database"
	testingpkg "github.com/aristath/hindsight/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return j.err
}

func (j *countingJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{name: "descriptor", schedule: "@every 30m"},
		{name: "daily", schedule: "@daily"},
		{name: "six fields", schedule: "0 */5 * * * *"},
		{name: "invalid", schedule: "every now and then", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddJob(tt.schedule, &countingJob{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, 3, s.Jobs())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.count() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	boom := errors.New("boom")

	assert.NoError(t, s.RunNow(&countingJob{}))
	assert.ErrorIs(t, s.RunNow(&countingJob{err: boom}), boom)
}

type namedJob struct {
	name string
	run  func() error
}

func (j namedJob) Name() string { return j.name }
func (j namedJob) Run() error   { return j.run() }

func TestScheduler_RunNowRecoversPanic(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.RunNow(namedJob{name: "explodes", run: func() error { panic("kaboom") }})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestScheduler_Status(t *testing.T) {
	s := New(zerolog.Nop())
	ok := namedJob{name: "warmup", run: func() error { return nil }}
	failing := namedJob{name: "backup", run: func() error { return errors.New("bucket unreachable") }}
	require.NoError(t, s.AddJob("@hourly", ok))
	require.NoError(t, s.AddJob("@daily", failing))

	before := s.Status()
	require.Len(t, before, 2)
	assert.Equal(t, "backup", before[0].Name, "sorted by name")
	assert.Equal(t, "@daily", before[0].Schedule)
	assert.True(t, before[0].LastRun.IsZero())

	assert.NoError(t, s.RunNow(ok))
	assert.Error(t, s.RunNow(failing))

	after := s.Status()
	assert.Equal(t, "bucket unreachable", after[0].LastError)
	assert.False(t, after[0].LastRun.IsZero())
	assert.Empty(t, after[1].LastError)
	assert.False(t, after[1].LastRun.IsZero())
}

type fakeWarmer struct {
	coins  []string
	failed int
}

func (f *fakeWarmer) Warmup(ctx context.Context, coins []string) int {
	f.coins = coins
	return f.failed
}

func TestRatesWarmupJob(t *testing.T) {
	warmer := &fakeWarmer{failed: 2}
	job := NewRatesWarmupJob(warmer, []string{"bitcoin", "ethereum"}, time.Second)
	job.SetLogger(zerolog.Nop())

	assert.Equal(t, "rates_warmup", job.Name())
	assert.NoError(t, job.Run(), "unreachable sources do not fail the job")
	assert.Equal(t, []string{"bitcoin", "ethereum"}, warmer.coins)
}

func TestCheckDatabasesJob(t *testing.T) {
	cache := testingpkg.NewTestDB(t, "client_data")
	portfolio := testingpkg.NewTestDB(t, "portfolio")

	job := NewCheckDatabasesJob(cache, nil, portfolio)
	job.SetLogger(zerolog.Nop())

	assert.Equal(t, "check_databases", job.Name())
	assert.NoError(t, job.Run())
}

func TestCheckDatabasesJob_ClosedDatabaseFails(t *testing.T) {
	db := testingpkg.NewTestDB(t, "portfolio")
	closed, err := database.New(database.Config{Path: db.Path(), Name: "closed"})
	require.NoError(t, err)
	require.NoError(t, closed.Close())

	job := NewCheckDatabasesJob(closed)
	assert.Error(t, job.Run())
}
