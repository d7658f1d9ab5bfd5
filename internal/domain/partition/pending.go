package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
)

// PendingQueue is the durable record of "deletion owed": directory paths
// that earlier delete attempts could not remove. Entries are appended when
// retries and the trash fallback are exhausted, and removed only after a
// later attempt succeeds. The queue survives crashes and restarts and is
// drained at every process start and at shutdown.
type PendingQueue struct {
	mu   sync.Mutex
	path string
	log  *logging.Logger
}

// NewPendingQueue creates the queue over pending_deletes.json. The file is
// created lazily on first enqueue.
func NewPendingQueue(layout paths.Layout, log *logging.Logger) *PendingQueue {
	return &PendingQueue{path: layout.PendingFile(), log: log}
}

// List returns the queued paths in order. A missing or unreadable file
// yields an empty queue: the queue is best-effort bookkeeping and must
// never block startup.
func (q *PendingQueue) List() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Enqueue appends dir unless it is already queued. Exactly-once: a
// directory that keeps failing stays queued once, not once per attempt.
func (q *PendingQueue) Enqueue(dir string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	list := q.load()
	for _, existing := range list {
		if existing == dir {
			return nil
		}
	}
	return q.save(append(list, dir))
}

// Drain attempts every queued path with the supplied remover, keeping the
// paths that still fail. Returns how many entries were cleared.
func (q *PendingQueue) Drain(remove func(dir string) error) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	list := q.load()
	if len(list) == 0 {
		return 0
	}

	var remain []string
	for _, dir := range list {
		if err := remove(dir); err != nil {
			q.log.Warn("Pending delete still failing",
				zap.String("dir", dir),
				zap.Error(err),
			)
			remain = append(remain, dir)
		}
	}

	if err := q.save(remain); err != nil {
		q.log.Error("Failed to persist pending-delete queue", zap.Error(err))
	}
	return len(list) - len(remain)
}

// load must be called with q.mu held.
func (q *PendingQueue) load() []string {
	data, err := os.ReadFile(q.path)
	if err != nil {
		return nil
	}
	var list []string
	if err := sonic.Unmarshal(data, &list); err != nil {
		q.log.Warn("Pending-delete queue unreadable, starting empty", zap.Error(err))
		return nil
	}
	return list
}

// save must be called with q.mu held.
func (q *PendingQueue) save(list []string) error {
	if list == nil {
		list = []string{}
	}
	data, err := sonic.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pending deletes: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(q.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write pending deletes: %w", err)
	}
	return nil
}
