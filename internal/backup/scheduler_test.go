package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileSnapshotter struct {
	err error
}

func (f fileSnapshotter) Snapshot(path string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("snapshot"), 0o600)
}

type countingForgetter struct {
	calls     int
	retention time.Duration
}

func (c *countingForgetter) Forget(retention time.Duration) (int, error) {
	c.calls++
	c.retention = retention
	return 3, nil
}

func TestRunWritesTimestampedSnapshot(t *testing.T) {
	logger, hook := test.NewNullLogger()
	dir := filepath.Join(t.TempDir(), "nested")
	dedupe := &countingForgetter{}

	s, err := New("@daily", dir, fileSnapshotter{}, logger, WithDedupePruning(dedupe, time.Hour))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	path, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ledger-20240506T070809Z.db"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "snapshot", string(raw))

	assert.Equal(t, 1, dedupe.calls)
	assert.Equal(t, time.Hour, dedupe.retention)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestRunReportsSnapshotFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	boom := errors.New("disk full")

	s, err := New("@hourly", t.TempDir(), fileSnapshotter{err: boom}, logger)
	require.NoError(t, err)

	_, err = s.Run()
	assert.ErrorIs(t, err, boom)
}

func TestInvalidSchedule(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := New("every tuesday", t.TempDir(), fileSnapshotter{}, logger)
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	logger, _ := test.NewNullLogger()

	s, err := New("@daily", t.TempDir(), fileSnapshotter{}, logger)
	require.NoError(t, err)

	s.Start()
	<-s.Stop().Done()
}
