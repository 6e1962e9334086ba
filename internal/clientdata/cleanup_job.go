package clientdata

import (
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob removes cache entries older than the configured TTL.
// With a zero TTL entries never expire and the job does nothing.
type CleanupJob struct {
	repo *Repository
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCleanupJob creates a new client data cleanup job.
func NewCleanupJob(repo *Repository, ttl time.Duration, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		ttl:  ttl,
		log:  log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// Run removes expired entries.
func (j *CleanupJob) Run() error {
	if j.ttl <= 0 {
		return nil
	}

	deleted, err := j.repo.DeleteOlderThan(j.ttl)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired client data")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Dur("ttl", j.ttl).
			Msg("Client data cleanup completed")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
