package partition

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/monitoring"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// Retry policy for transient deletion failures. The embedded renderer can
// hold file locks open briefly after a window closes, so the first attempts
// routinely fail on Windows.
const (
	removeAttempts  = 4
	removeBaseDelay = 250 * time.Millisecond
)

// Reaper deletes every directory variant belonging to a retired partition.
//
// Each directory goes through three stages: recursive removal with bounded
// exponential-backoff retries, then rename into Trash/ and retry there,
// then the pending-delete queue as the durable fallback. One directory
// failing never aborts the sweep of the remaining variants.
type Reaper struct {
	layout  paths.Layout
	queue   *PendingQueue
	log     *logging.Logger
	metrics *monitoring.Metrics
	sleep   func(time.Duration)
	now     func() time.Time
}

// NewReaper creates a reaper over the given layout and pending queue.
func NewReaper(layout paths.Layout, queue *PendingQueue, log *logging.Logger) *Reaper {
	return &Reaper{
		layout: layout,
		queue:  queue,
		log:    log,
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// WithMetrics adds metrics tracking to the reaper.
func (r *Reaper) WithMetrics(m *monitoring.Metrics) *Reaper {
	r.metrics = m
	return r
}

// Reap removes the partition's primary directory plus, when a profile is
// supplied, every legacy directory its display name could map to, plus
// every variant directory derivable from the partition string itself.
//
// Variants are processed sequentially: interleaved retries would only
// amplify filesystem contention. Returns true only if every directory that
// existed was removed, directly or via trash. Partial failure is non-fatal
// to the caller; leftover directories are queued and deleted on a later
// start.
func (r *Reaper) Reap(partition string, legacyOf *types.Profile) bool {
	primary := r.layout.PartitionDir(partition)
	ok := r.removeDir(primary)

	if legacyOf != nil {
		for _, cand := range CandidatesFromName(legacyOf.Name) {
			dir := filepath.Join(r.layout.PartitionsRoot(), cand)
			if dir == primary || !dirExists(dir) {
				continue
			}
			ok = r.removeDir(dir) && ok
		}
	}

	for _, base := range VariantsFromToken(partition) {
		dir := filepath.Join(r.layout.PartitionsRoot(), base)
		if dir == primary || !dirExists(dir) {
			continue
		}
		ok = r.removeDir(dir) && ok
	}

	return ok
}

// DrainPending replays the pending-delete queue, clearing every entry that
// can now be removed. Called at process start (before any partition session
// is opened, while nothing holds locks) and again at shutdown.
func (r *Reaper) DrainPending() int {
	cleared := r.queue.Drain(r.removeWithRetry)
	if cleared > 0 {
		r.log.Info("Cleared pending deletes", zap.Int("count", cleared))
	}
	if r.metrics != nil {
		r.metrics.SetPendingDeletes(len(r.queue.List()))
	}
	return cleared
}

// removeDir runs the full three-stage chain for one directory. Returns
// true when the directory is gone (removed directly or via trash), false
// when it had to be queued for later.
func (r *Reaper) removeDir(dir string) bool {
	size := r.dirSize(dir)

	if err := r.removeWithRetry(dir); err == nil {
		r.log.Info("Removed partition directory",
			zap.String("dir", dir),
			zap.Int64("bytes", size),
		)
		r.record("removed")
		return true
	} else {
		r.log.Warn("Direct removal failed, trying trash", zap.String("dir", dir), zap.Error(err))
	}

	trashed, err := r.moveToTrash(dir)
	if err != nil {
		// Could not even rename it away: queue the original path.
		r.enqueue(dir)
		return false
	}

	if err := r.removeWithRetry(trashed); err != nil {
		// Rename succeeded but deletion still fails: queue the trashed
		// path, the original is already out of the way.
		r.enqueue(trashed)
		return false
	}

	r.log.Info("Removed partition directory via trash",
		zap.String("dir", dir),
		zap.Int64("bytes", size),
	)
	r.record("trashed")
	return true
}

// removeWithRetry attempts recursive removal up to removeAttempts times,
// doubling the backoff delay each round. Only transient lock/permission/
// not-found errors are retried; anything else (disk failure, I/O error) is
// returned immediately so the caller can fall back.
func (r *Reaper) removeWithRetry(dir string) error {
	var lastErr error
	for attempt := 0; attempt < removeAttempts; attempt++ {
		err := os.RemoveAll(dir)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		lastErr = err
		r.sleep(removeBaseDelay << attempt)
	}
	return fmt.Errorf("failed to remove %s after %d attempts: %w", dir, removeAttempts, lastErr)
}

// moveToTrash renames dir into the trash holding area under a
// timestamp-suffixed name so repeated deletions of equal basenames cannot
// collide.
func (r *Reaper) moveToTrash(dir string) (string, error) {
	if err := os.MkdirAll(r.layout.TrashRoot(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create trash dir: %w", err)
	}
	dest := filepath.Join(
		r.layout.TrashRoot(),
		filepath.Base(dir)+"-"+strconv.FormatInt(r.now().UnixMilli(), 10),
	)
	if err := os.Rename(dir, dest); err != nil {
		return "", fmt.Errorf("failed to move %s to trash: %w", dir, err)
	}
	return dest, nil
}

func (r *Reaper) enqueue(dir string) {
	if err := r.queue.Enqueue(dir); err != nil {
		r.log.Error("Failed to queue directory for later deletion",
			zap.String("dir", dir),
			zap.Error(err),
		)
		return
	}
	r.log.Warn("Queued directory for later deletion", zap.String("dir", dir))
	r.record("queued")
	if r.metrics != nil {
		r.metrics.SetPendingDeletes(len(r.queue.List()))
	}
}

func (r *Reaper) record(outcome string) {
	if r.metrics != nil {
		r.metrics.RecordReap(outcome)
	}
}

// dirSize walks the directory to account for the bytes a sweep reclaims.
// Best effort, used for logging only.
func (r *Reaper) dirSize(dir string) int64 {
	var total int64
	conf := fastwalk.Config{Follow: false}
	_ = fastwalk.Walk(&conf, dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// isTransient classifies deletion errors worth retrying: the renderer
// releasing its locks shows up as EBUSY/EPERM (and the occasional ENOTEMPTY
// when a file vanishes mid-walk), and not-found races are harmless.
func isTransient(err error) bool {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EBUSY || errno == syscall.ENOTEMPTY
	}
	return false
}
