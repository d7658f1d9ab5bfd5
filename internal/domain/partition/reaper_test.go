package partition

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

func newTestReaper(t *testing.T) (*Reaper, paths.Layout) {
	t.Helper()
	layout := paths.Layout{DataDir: t.TempDir()}
	require.NoError(t, layout.Ensure())
	r := NewReaper(layout, NewPendingQueue(layout, testLogger()), testLogger())
	r.sleep = func(time.Duration) {}
	return r, layout
}

func mkPartitionDir(t *testing.T, layout paths.Layout, base string) string {
	t.Helper()
	dir := filepath.Join(layout.PartitionsRoot(), base)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.bin"), []byte("payload"), 0o644))
	return dir
}

func TestReapRemovesPrimary(t *testing.T) {
	r, layout := newTestReaper(t)
	dir := mkPartitionDir(t, layout, "profile-Main")

	assert.True(t, r.Reap("persist:profile-Main", nil))
	assert.NoDirExists(t, dir)
}

func TestReapSweepsLegacyCandidates(t *testing.T) {
	r, layout := newTestReaper(t)

	primary := mkPartitionDir(t, layout, "profile-caf__")
	encoded := mkPartitionDir(t, layout, "profile-caf%C3%A9!")
	raw := mkPartitionDir(t, layout, "profile-café!")
	underscore := mkPartitionDir(t, layout, "profile-caf%C3%A9!_")
	unrelated := mkPartitionDir(t, layout, "profile-Other")

	p := types.Profile{Name: "café!", Partition: "persist:profile-caf__"}
	assert.True(t, r.Reap(p.Partition, &p))

	assert.NoDirExists(t, primary)
	assert.NoDirExists(t, encoded)
	assert.NoDirExists(t, raw)
	assert.NoDirExists(t, underscore)
	assert.DirExists(t, unrelated)
}

func TestReapSweepsTokenVariants(t *testing.T) {
	r, layout := newTestReaper(t)

	// No profile record: variants are derived from the token alone.
	primary := mkPartitionDir(t, layout, "profile-caf%C3%A9")
	decoded := mkPartitionDir(t, layout, "profile-café")
	sanitized := mkPartitionDir(t, layout, "profile-caf_")
	trailing := mkPartitionDir(t, layout, "profile-caf%C3%A9_")

	assert.True(t, r.Reap("persist:profile-caf%C3%A9", nil))

	assert.NoDirExists(t, primary)
	assert.NoDirExists(t, decoded)
	assert.NoDirExists(t, sanitized)
	assert.NoDirExists(t, trailing)
}

func TestReapMissingDirectoriesSucceeds(t *testing.T) {
	r, _ := newTestReaper(t)
	assert.True(t, r.Reap("persist:profile-Ghost", nil))
}

func TestRemoveWithRetryBackoff(t *testing.T) {
	r, layout := newTestReaper(t)

	var delays []time.Duration
	r.sleep = func(d time.Duration) { delays = append(delays, d) }

	dir := mkPartitionDir(t, layout, "profile-Gone")
	require.NoError(t, r.removeWithRetry(dir))
	assert.Empty(t, delays, "successful first attempt must not sleep")
}

func TestDrainPendingClearsQueue(t *testing.T) {
	r, layout := newTestReaper(t)

	dir := mkPartitionDir(t, layout, "profile-Queued")
	require.NoError(t, r.queue.Enqueue(dir))

	assert.Equal(t, 1, r.DrainPending())
	assert.NoDirExists(t, dir)
	assert.Empty(t, r.queue.List())
}

func TestMoveToTrashUsesTimestampSuffix(t *testing.T) {
	r, layout := newTestReaper(t)
	r.now = func() time.Time { return time.UnixMilli(1700000000000) }

	dir := mkPartitionDir(t, layout, "profile-Trashy")
	dest, err := r.moveToTrash(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(layout.TrashRoot(), "profile-Trashy-1700000000000"), dest)
	assert.DirExists(t, dest)
	assert.NoDirExists(t, dir)
}

func TestIsTransientClassification(t *testing.T) {
	assert.True(t, isTransient(os.ErrNotExist))
	assert.True(t, isTransient(os.ErrPermission))
	assert.False(t, isTransient(assert.AnError))
}
