package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/hindsight/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// BackupJob uploads a fresh archive and rotates old ones
type BackupJob struct {
	service       *BackupService
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		timeout:       10 * time.Minute,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "backup"
}

// Run creates the archive first. A failed rotation is logged, the new
// archive is already safe.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	if _, err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Error().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

// Disk space thresholds in bytes
const (
	diskCritical = 500 << 20
	diskLow      = 2 << 30
)

// MaintenanceJob compacts the databases and watches free disk space
type MaintenanceJob struct {
	databases []*database.DB
	dataDir   string
	usage     func(path string) (uint64, error)
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(databases []*database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		usage:     freeBytes,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run vacuums every database. It fails when the disk is nearly full since
// VACUUM needs room for a full copy.
func (j *MaintenanceJob) Run() error {
	startTime := time.Now()

	free, err := j.usage(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to read disk usage: %w", err)
	}
	if free < diskCritical {
		j.log.Error().Uint64("free_bytes", free).Msg("Insufficient disk space, skipping maintenance")
		return fmt.Errorf("only %d MB free in %s", free>>20, j.dataDir)
	}
	if free < diskLow {
		j.log.Warn().Uint64("free_bytes", free).Msg("Disk space running low")
	}

	for _, db := range j.databases {
		if err := j.vacuum(db); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("VACUUM failed")
		}
	}

	j.log.Info().Dur("duration_ms", time.Since(startTime)).Msg("Maintenance completed")
	return nil
}

func (j *MaintenanceJob) vacuum(db *database.DB) error {
	before, after, err := db.Vacuum(context.Background())
	if err != nil {
		return err
	}

	j.log.Info().
		Str("database", db.Name()).
		Int64("size_before_bytes", before).
		Int64("size_after_bytes", after).
		Int64("reclaimed_bytes", before-after).
		Msg("VACUUM completed")
	return nil
}

func freeBytes(path string) (uint64, error) {
	stat, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return stat.Free, nil
}
