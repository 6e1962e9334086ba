package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aristath/hindsight/internal/connectivity"
	"github.com/aristath/hindsight/internal/database"
	"github.com/aristath/hindsight/internal/reliability"
	"github.com/aristath/hindsight/internal/scheduler"
	"github.com/aristath/hindsight/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// JobRunner runs a job outside its schedule
type JobRunner interface {
	RunNow(job scheduler.Job) error
}

// JobStatusReporter reports schedules and last runs. The scheduler
// implements it; runners that do not are listed by name only.
type JobStatusReporter interface {
	Status() []scheduler.JobStatus
}

// BackupLister lists stored backup archives
type BackupLister interface {
	ListBackups(ctx context.Context) ([]reliability.BackupInfo, error)
}

// SystemHandlers serves health, status and maintenance endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	databases   []*database.DB
	probe       connectivity.Probe
	runner      JobRunner
	jobs        map[string]scheduler.Job
	backups     BackupLister
	stats       func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance. backups may be nil
// when backups are disabled.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	databases []*database.DB,
	probe connectivity.Probe,
	runner JobRunner,
	backups BackupLister,
) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		databases:   databases,
		probe:       probe,
		runner:      runner,
		jobs:        make(map[string]scheduler.Job),
		backups:     backups,
	}
	h.stats = h.getSystemStats
	return h
}

// SetJobs registers jobs for manual triggering
func (h *SystemHandlers) SetJobs(jobs ...scheduler.Job) {
	for _, job := range jobs {
		if job != nil {
			h.jobs[job.Name()] = job
		}
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)
		r.Get("/databases", h.HandleDatabaseStats)
		r.Get("/disk", h.HandleDiskUsage)
		r.Get("/jobs", h.HandleListJobs)
		r.Post("/jobs/{name}", h.HandleTriggerJob)
		r.Get("/backups", h.HandleListBackups)
	})
}

// HandleHealth reports whether every database passes its health check.
// GET /api/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	checks := make(map[string]string, len(h.databases))
	for _, db := range h.databases {
		if err := db.HealthCheck(ctx); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Health check failed")
			checks[db.Name()] = "unhealthy"
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[db.Name()] = "ok"
	}

	h.writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"databases": checks,
	})
}

// SystemStatusResponse is the payload of GET /api/system/status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	Online        bool    `json:"online"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
	Jobs          int     `json:"jobs"`
}

// HandleSystemStatus returns process and connectivity status.
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.stats()

	online := false
	if h.probe != nil {
		online = h.probe.IsOnline(r.Context())
	}

	h.writeJSON(w, http.StatusOK, SystemStatusResponse{
		Status:        "healthy",
		Version:       version.Version,
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		Online:        online,
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Jobs:          len(h.jobs),
	})
}

// DBInfo describes one database
type DBInfo struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
}

// HandleDatabaseStats returns the logical size of each database.
// GET /api/system/databases
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	infos := make([]DBInfo, 0, len(h.databases))
	totalSizeMB := 0.0

	for _, db := range h.databases {
		size, err := db.Size(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to read database size")
			continue
		}
		sizeMB := float64(size) / 1024 / 1024
		totalSizeMB += sizeMB
		infos = append(infos, DBInfo{Name: db.Name(), Path: db.Path(), SizeMB: sizeMB})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"databases":     infos,
		"total_size_mb": totalSizeMB,
	})
}

// HandleDiskUsage returns the size of the data directory.
// GET /api/system/disk
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data_dir":    h.dataDir,
		"data_dir_mb": h.getDirSize(h.dataDir),
	})
}

// HandleListJobs returns the names of the jobs that can be triggered.
// GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	response := map[string]interface{}{"jobs": names}
	if reporter, ok := h.runner.(JobStatusReporter); ok {
		response["schedule"] = reporter.Status()
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleTriggerJob runs a registered job immediately.
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown job "+name+".")
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")
	if err := h.runner.RunNow(job); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		h.writeError(w, http.StatusInternalServerError, "job_failed", "Job "+name+" failed.")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"job": name, "status": "completed"})
}

// HandleListBackups returns stored backups, newest first.
// GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		h.writeError(w, http.StatusNotFound, "backups_disabled", "Backups are not enabled.")
		return
	}

	backups, err := h.backups.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		h.writeError(w, http.StatusBadGateway, "backup_store_unavailable", "Backups could not be listed.")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats returns CPU and RAM usage percentages, sampling CPU over 100ms
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON error")
	}
}
