package reliability

import (
	"errors"
	"testing"
	"time"

	"github.com/aristath/hindsight/internal/database"
	testingpkg "github.com/aristath/hindsight/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupJob_Run(t *testing.T) {
	store := newMemoryStore()
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	for _, d := range []int{1, 2, 3, 45} {
		store.objects["hindsight/"+archivePrefix+now.AddDate(0, 0, -d).Format(archiveTimeLayout)+archiveSuffix] = []byte("x")
	}

	svc := newTestService(t, store, "hindsight", now)
	job := NewBackupJob(svc, 30, zerolog.Nop())

	assert.Equal(t, "backup", job.Name())
	require.NoError(t, job.Run())

	keys := store.keys()
	assert.Len(t, keys, 4, "new archive added, expired one rotated out")
	assert.Contains(t, keys, "hindsight/hindsight-backup-2024-03-31-000000.tar.gz")
}

func TestMaintenanceJob_Run(t *testing.T) {
	db := testingpkg.NewTestDB(t, "portfolio")

	tests := []struct {
		name    string
		usage   func(string) (uint64, error)
		wantErr bool
	}{
		{name: "plenty of space", usage: func(string) (uint64, error) { return 50 << 30, nil }},
		{name: "low space still runs", usage: func(string) (uint64, error) { return 1 << 30, nil }},
		{name: "critical space", usage: func(string) (uint64, error) { return 100 << 20, nil }, wantErr: true},
		{name: "usage error", usage: func(string) (uint64, error) { return 0, errors.New("stat failed") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewMaintenanceJob([]*database.DB{db}, t.TempDir(), zerolog.Nop())
			job.usage = tt.usage

			err := job.Run()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaintenanceJob_RealDiskUsage(t *testing.T) {
	free, err := freeBytes(t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, free)
}
