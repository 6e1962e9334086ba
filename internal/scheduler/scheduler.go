// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobStatus describes a registered job and its last run, whether scheduled
// or triggered by hand
type JobStatus struct {
	Name         string    `json:"name"`
	Schedule     string    `json:"schedule"`
	Next         time.Time `json:"next"`
	LastRun      time.Time `json:"last_run"`
	LastDuration float64   `json:"last_duration_ms,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
}

type registration struct {
	name     string
	schedule string
	id       cron.EntryID
}

type runRecord struct {
	at       time.Time
	duration time.Duration
	err      error
}

// Scheduler runs jobs on cron schedules (seconds field enabled) and records
// the outcome of every run.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	entries []registration
	runs    map[string]runRecord
}

// New creates a scheduler with no jobs
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
		runs: make(map[string]runRecord),
	}
}

// Start starts the cron loop
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Jobs()).Msg("Scheduler started")
}

// Stop stops the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under a cron schedule such as "@hourly",
// "@every 30m" or "0 */5 * * * *"
func (s *Scheduler) AddJob(schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(job); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}

	s.mu.Lock()
	s.entries = append(s.entries, registration{name: job.Name(), schedule: schedule, id: id})
	s.mu.Unlock()

	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("Job registered")
	return nil
}

// RunNow runs job synchronously, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.run(job)
}

// Jobs returns the number of registered jobs
func (s *Scheduler) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Status reports every registered job sorted by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.entries))
	for _, e := range s.entries {
		st := JobStatus{Name: e.name, Schedule: e.schedule, Next: s.cron.Entry(e.id).Next}
		if rec, ok := s.runs[e.name]; ok {
			st.LastRun = rec.at
			st.LastDuration = float64(rec.duration.Microseconds()) / 1000
			if rec.err != nil {
				st.LastError = rec.err.Error()
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// run executes job and records the outcome. A panic is returned as an error.
func (s *Scheduler) run(job Job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
		s.mu.Lock()
		s.runs[job.Name()] = runRecord{at: start, duration: time.Since(start), err: err}
		s.mu.Unlock()
	}()

	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	if err = job.Run(); err != nil {
		return err
	}
	s.log.Debug().Str("job", job.Name()).Dur("duration", time.Since(start)).Msg("Job completed")
	return nil
}
