package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/hindsight/internal/connectivity"
	"github.com/aristath/hindsight/internal/database"
	"github.com/aristath/hindsight/internal/reliability"
	"github.com/aristath/hindsight/internal/scheduler"
	testingpkg "github.com/aristath/hindsight/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	err  error
	runs int
}

func (j *stubJob) Run() error   { j.runs++; return j.err }
func (j *stubJob) Name() string { return j.name }

type directRunner struct{}

func (directRunner) RunNow(job scheduler.Job) error { return job.Run() }

type stubBackups struct {
	backups []reliability.BackupInfo
	err     error
}

func (s stubBackups) ListBackups(context.Context) ([]reliability.BackupInfo, error) {
	return s.backups, s.err
}

func newSystemRouter(t *testing.T, backups BackupLister, jobs ...scheduler.Job) *chi.Mux {
	t.Helper()

	dbs := []*database.DB{
		testingpkg.NewTestDB(t, "client_data"),
		testingpkg.NewTestDB(t, "portfolio"),
	}
	h := NewSystemHandlers(zerolog.Nop(), t.TempDir(), dbs, connectivity.Static(true), directRunner{}, backups)
	h.stats = func() (float64, float64) { return 12.5, 40 }
	h.SetJobs(jobs...)

	router := chi.NewRouter()
	router.Route("/api", h.RegisterRoutes)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestSystemHandlers_Health(t *testing.T) {
	router := newSystemRouter(t, nil)

	status, body := doRequest(t, router, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, map[string]interface{}{"client_data": "ok", "portfolio": "ok"}, data["databases"])
}

func TestSystemHandlers_HealthReportsClosedDatabase(t *testing.T) {
	db := testingpkg.NewTestDB(t, "portfolio")
	h := NewSystemHandlers(zerolog.Nop(), t.TempDir(), []*database.DB{db}, nil, directRunner{}, nil)
	require.NoError(t, db.Close())

	router := chi.NewRouter()
	router.Route("/api", h.RegisterRoutes)

	status, body := doRequest(t, router, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["data"].(map[string]interface{})["status"])
}

func TestSystemHandlers_Status(t *testing.T) {
	router := newSystemRouter(t, nil, &stubJob{name: "rates_warmup"})

	status, body := doRequest(t, router, http.MethodGet, "/api/system/status")
	assert.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, true, data["online"])
	assert.Equal(t, 12.5, data["cpu_percent"])
	assert.Equal(t, 40.0, data["ram_percent"])
	assert.Equal(t, float64(1), data["jobs"])
	assert.NotEmpty(t, data["version"])
	assert.NotNil(t, body["metadata"])
}

func TestSystemHandlers_DatabaseStats(t *testing.T) {
	router := newSystemRouter(t, nil)

	status, body := doRequest(t, router, http.MethodGet, "/api/system/databases")
	assert.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	dbs := data["databases"].([]interface{})
	require.Len(t, dbs, 2)
	assert.Equal(t, "client_data", dbs[0].(map[string]interface{})["name"])
	assert.Positive(t, data["total_size_mb"])
}

func TestSystemHandlers_TriggerJob(t *testing.T) {
	ok := &stubJob{name: "check_databases"}
	failing := &stubJob{name: "backup", err: errors.New("bucket unreachable")}
	router := newSystemRouter(t, nil, ok, failing)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "runs registered job", path: "/api/system/jobs/check_databases", expectedStatus: http.StatusOK},
		{name: "job failure", path: "/api/system/jobs/backup", expectedStatus: http.StatusInternalServerError},
		{name: "unknown job", path: "/api/system/jobs/deploy", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doRequest(t, router, http.MethodPost, tt.path)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}

	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)

	status, body := doRequest(t, router, http.MethodGet, "/api/system/jobs")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"backup", "check_databases"}, body["data"].(map[string]interface{})["jobs"])
}

func TestSystemHandlers_Backups(t *testing.T) {
	stamp := time.Date(2024, 3, 14, 1, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		backups        BackupLister
		expectedStatus int
		expectedCount  float64
	}{
		{name: "disabled", backups: nil, expectedStatus: http.StatusNotFound},
		{
			name: "lists backups",
			backups: stubBackups{backups: []reliability.BackupInfo{
				{Key: "hindsight/hindsight-backup-2024-03-14-010000.tar.gz", Timestamp: stamp},
			}},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{name: "store error", backups: stubBackups{err: errors.New("timeout")}, expectedStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newSystemRouter(t, tt.backups)

			status, body := doRequest(t, router, http.MethodGet, "/api/system/backups")
			assert.Equal(t, tt.expectedStatus, status)
			if status == http.StatusOK {
				assert.Equal(t, tt.expectedCount, body["data"].(map[string]interface{})["count"])
			}
		})
	}
}

func TestSystemHandlers_ListJobsWithSchedulerStatus(t *testing.T) {
	sched := scheduler.New(zerolog.Nop())
	job := &stubJob{name: "check_databases"}
	require.NoError(t, sched.AddJob("@hourly", job))

	h := NewSystemHandlers(zerolog.Nop(), t.TempDir(), nil, connectivity.Static(true), sched, nil)
	h.SetJobs(job)
	router := chi.NewRouter()
	router.Route("/api", h.RegisterRoutes)

	status, _ := doRequest(t, router, http.MethodPost, "/api/system/jobs/check_databases")
	require.Equal(t, http.StatusOK, status)

	status, body := doRequest(t, router, http.MethodGet, "/api/system/jobs")
	require.Equal(t, http.StatusOK, status)

	schedule := body["data"].(map[string]interface{})["schedule"].([]interface{})
	require.Len(t, schedule, 1)
	entry := schedule[0].(map[string]interface{})
	assert.Equal(t, "check_databases", entry["name"])
	assert.Equal(t, "@hourly", entry["schedule"])
	assert.NotEmpty(t, entry["last_run"])
}
