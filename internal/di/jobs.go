package di

import (
	"fmt"

	"github.com/aristath/hindsight/internal/clientdata"
	"github.com/aristath/hindsight/internal/config"
	"github.com/aristath/hindsight/internal/reliability"
	"github.com/aristath/hindsight/internal/scheduler"
	"github.com/rs/zerolog"
)

type scheduledJob struct {
	schedule string
	job      scheduler.Job
}

// RegisterJobs creates the background jobs and schedules them
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	sched := scheduler.New(log)
	container.Scheduler = sched

	warmup := scheduler.NewRatesWarmupJob(container.RatesService, cfg.WarmupCoin, cfg.HTTPTimeout*3)
	warmup.SetLogger(log.With().Str("job", "rates_warmup").Logger())

	checkDatabases := scheduler.NewCheckDatabasesJob(container.Databases()...)
	checkDatabases.SetLogger(log.With().Str("job", "check_databases").Logger())

	entries := []scheduledJob{
		{cfg.Scheduler.RatesWarmup, warmup},
		{cfg.Scheduler.CacheCleanup, clientdata.NewCleanupJob(container.ClientDataRepo, cfg.CacheTTL, log)},
		{cfg.Scheduler.DatabaseCheck, checkDatabases},
		{cfg.Scheduler.Maintenance, reliability.NewMaintenanceJob(container.Databases(), cfg.DataDir, log)},
	}
	if container.BackupService != nil {
		entries = append(entries, scheduledJob{
			cfg.Backup.Schedule,
			reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log),
		})
	}

	for _, e := range entries {
		if err := sched.AddJob(e.schedule, e.job); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", e.job.Name(), err)
		}
		container.Jobs = append(container.Jobs, e.job)
	}

	log.Info().Int("jobs", len(container.Jobs)).Msg("Background jobs registered")
	return nil
}
