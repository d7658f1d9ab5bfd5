package launcher

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/domain/partition"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/profile"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/registry"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/window"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/monitoring"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/utils"
)

// SessionGateway manipulates partition-scoped session storage. The
// concrete implementation talks to the embedded web runtime; it is a black
// box here.
type SessionGateway interface {
	// ClearStorageData wipes every storage category of the partition.
	ClearStorageData(ctx context.Context, partition string) error
	// ClearCache drops the partition's HTTP cache.
	ClearCache(ctx context.Context, partition string) error
	// CopyCookies replaces dst's cookies with a copy of src's.
	CopyCookies(ctx context.Context, src, dst string) error
}

// WindowFactory opens session windows for profiles.
type WindowFactory interface {
	Open(ctx context.Context, profileName string, opts window.Options) (window.Session, error)
}

// Events receives lifecycle notifications. Implemented by the WebSocket
// hub; NopEvents for tests and headless use.
type Events interface {
	ProfilesChanged(profiles []types.Profile)
	ActiveChanged(names []string)
	RestartRequired(profileName string)
}

// NopEvents discards all notifications.
type NopEvents struct{}

func (NopEvents) ProfilesChanged([]types.Profile) {}
func (NopEvents) ActiveChanged([]string)          {}
func (NopEvents) RestartRequired(string)          {}

// DeleteResult reports what a profile deletion did beyond removing the
// record.
type DeleteResult struct {
	// RestartRequired is set when the deletion wiped the last reference
	// to a partition. The windowing runtime may still hold locks on the
	// partition directory; a restart guarantees the leftover sweep runs
	// unobstructed.
	RestartRequired bool `json:"restartRequired"`
	// Reaped is set when the partition directories were all removed
	// immediately, with nothing left for the pending-delete queue.
	Reaped bool `json:"reaped"`
}

// Manager is the profile lifecycle orchestrator. All operations are safe
// for concurrent use; mutations serialize on the underlying store.
type Manager struct {
	store    *profile.Store
	resolver *partition.Resolver
	reaper   *partition.Reaper
	registry *registry.Manager
	gateway  SessionGateway
	windows  WindowFactory
	events   Events
	log      *logging.Logger
	metrics  *monitoring.Metrics

	mu       sync.Mutex
	sessions map[string]window.Session // window id -> open session
}

// NewManager wires the lifecycle orchestrator.
func NewManager(
	store *profile.Store,
	resolver *partition.Resolver,
	reaper *partition.Reaper,
	reg *registry.Manager,
	gateway SessionGateway,
	windows WindowFactory,
	log *logging.Logger,
) *Manager {
	return &Manager{
		store:    store,
		resolver: resolver,
		reaper:   reaper,
		registry: reg,
		gateway:  gateway,
		windows:  windows,
		events:   NopEvents{},
		log:      log,
		sessions: make(map[string]window.Session),
	}
}

// WithEvents adds lifecycle notifications to the manager.
func (m *Manager) WithEvents(e Events) *Manager {
	m.events = e
	return m
}

// WithMetrics adds metrics tracking to the manager.
func (m *Manager) WithMetrics(mm *monitoring.Metrics) *Manager {
	m.metrics = mm
	return m
}

// Startup runs the one-shot legacy migration and drains the pending-delete
// queue. Called before any window opens, while nothing can hold partition
// locks: records loaded from older file formats get their resolved
// partition pinned and the normalized list is written back, so every later
// refcount sees a stored field.
func (m *Manager) Startup() {
	if err := m.store.PinPartitions(m.resolver.Resolve); err != nil {
		m.log.Warn("Profile migration write-back failed", zap.Error(err))
	}
	m.reaper.DrainPending()
	m.gauges()
}

// Shutdown closes every open window, persisting geometry first, then
// drains the pending-delete queue once more.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	open := make([]window.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		m.SaveWindowState(s.ID())
		if err := s.Close(); err != nil {
			m.log.Warn("Window close failed during shutdown", zap.Error(err))
		}
		m.OnWindowClosed(s.ID())
	}
	m.reaper.DrainPending()
}

// List returns all profiles in display order.
func (m *Manager) List() []types.Profile {
	return m.store.List()
}

// Get returns one profile by name.
func (m *Manager) Get(name string) (types.Profile, error) {
	return m.store.Find(name)
}

// ResolvePartition returns the effective partition identifier for a
// profile, without persisting anything.
func (m *Manager) ResolvePartition(p types.Profile) string {
	return m.resolver.Resolve(p)
}

// Add creates a profile. The partition identifier is resolved and pinned
// at creation so later renames cannot move the profile off its data.
func (m *Manager) Add(name, job string, frame bool) (types.Profile, error) {
	clean := utils.SanitizeDisplayName(name)
	if clean == "" {
		return types.Profile{}, profile.ErrInvalidName
	}
	p := types.Profile{
		Name:    clean,
		Job:     types.NormalizeJob(job),
		Frame:   frame,
		IsClone: utils.InferIsClone(clean),
	}
	p.Partition = m.resolver.Resolve(p)

	added, err := m.store.Add(p)
	if err != nil {
		m.record("add", "error")
		return types.Profile{}, err
	}
	m.record("add", "ok")
	m.log.Info("Profile added",
		zap.String("name", added.Name),
		zap.String("partition", added.Partition),
	)
	m.changed()
	return added, nil
}

// Clone duplicates a profile under the next free "Name Copy" name. The
// clone gets its own partition; session cookies are copied over so the
// clone starts logged in. Cookie copy failure is logged, not fatal: the
// clone exists either way.
func (m *Manager) Clone(ctx context.Context, source string) (types.Profile, error) {
	src, err := m.store.Find(source)
	if err != nil {
		m.record("clone", "error")
		return types.Profile{}, err
	}
	cloneName, err := m.store.NextCloneName(src.Name)
	if err != nil {
		m.record("clone", "error")
		return types.Profile{}, err
	}

	clone := types.Profile{
		Name:     cloneName,
		Job:      src.Job,
		Frame:    src.Frame,
		Muted:    src.Muted,
		IsClone:  true,
		WinState: src.WinState.Clone(),
	}
	clone.Partition = m.resolver.Resolve(clone)

	added, err := m.store.Add(clone)
	if err != nil {
		m.record("clone", "error")
		return types.Profile{}, err
	}

	srcPartition := m.resolver.Resolve(src)
	if err := m.gateway.CopyCookies(ctx, srcPartition, added.Partition); err != nil {
		m.log.Warn("Cookie copy to clone failed",
			zap.String("source", src.Name),
			zap.String("clone", added.Name),
			zap.Error(err),
		)
	}

	m.record("clone", "ok")
	m.log.Info("Profile cloned",
		zap.String("source", src.Name),
		zap.String("clone", added.Name),
	)
	m.changed()
	return added, nil
}

// Rename changes a profile's display name. The partition stays pinned and
// any open windows follow the new name in the registry.
func (m *Manager) Rename(oldName, newName string) (types.Profile, error) {
	renamed, err := m.store.Rename(oldName, newName)
	if err != nil {
		m.record("rename", "error")
		return types.Profile{}, err
	}
	m.registry.RenameKey(oldName, renamed.Name)
	m.record("rename", "ok")
	m.changed()
	m.active()
	return renamed, nil
}

// Update mutates a profile's behavioral attributes (job, frame, muted).
// Name and partition are immutable here.
func (m *Manager) Update(name string, fn func(p *types.Profile)) (types.Profile, error) {
	updated, err := m.store.Update(name, func(p *types.Profile) {
		part := p.Partition
		fn(p)
		p.Partition = part
	})
	if err != nil {
		m.record("update", "error")
		return types.Profile{}, err
	}
	m.record("update", "ok")
	m.changed()
	return updated, nil
}

// Reorder rewrites the profile display order.
func (m *Manager) Reorder(names []string) error {
	if err := m.store.Reorder(names); err != nil {
		return err
	}
	m.changed()
	return nil
}

// Delete removes a profile. Open windows are closed first. With wipe set,
// and when no other profile still references the partition, every
// partition directory variant is reaped; directories that resist deletion
// land on the pending-delete queue and a restart is announced so the
// windowing runtime releases its locks before the next drain.
func (m *Manager) Delete(ctx context.Context, name string, wipe bool) (DeleteResult, error) {
	if err := m.Quit(name); err != nil {
		m.log.Warn("Closing windows before delete failed", zap.String("name", name), zap.Error(err))
	}

	removed, err := m.store.Remove(name)
	if err != nil {
		m.record("delete", "error")
		return DeleteResult{}, err
	}
	m.record("delete", "ok")
	m.changed()

	if !wipe {
		m.log.Info("Profile removed, data kept", zap.String("name", removed.Name))
		return DeleteResult{}, nil
	}

	part := m.resolver.Resolve(removed)
	if refs := m.partitionRefs(part); refs > 0 {
		m.log.Info("Partition still referenced, skipping wipe",
			zap.String("partition", part),
			zap.Int("remaining_refs", refs),
		)
		return DeleteResult{}, nil
	}

	if err := m.gateway.ClearStorageData(ctx, part); err != nil {
		m.log.Warn("Session storage clear failed, proceeding to directory sweep",
			zap.String("partition", part),
			zap.Error(err),
		)
	}
	reaped := m.reaper.Reap(part, &removed)
	m.gauges()

	m.events.RestartRequired(removed.Name)
	return DeleteResult{RestartRequired: true, Reaped: reaped}, nil
}

// partitionRefs counts remaining profiles whose effective partition is the
// given identifier. Each record is resolved rather than compared by its
// stored field: records that predate pinning carry an empty field until
// first launch yet still map onto the same directory.
func (m *Manager) partitionRefs(part string) int {
	n := 0
	for _, p := range m.store.List() {
		if m.resolver.Resolve(p) == part {
			n++
		}
	}
	return n
}

// Clear wipes a profile's session storage in place, optionally including
// the HTTP cache. The profile record and window state are untouched.
func (m *Manager) Clear(ctx context.Context, name string, cache bool) error {
	p, err := m.store.Find(name)
	if err != nil {
		return err
	}
	part := m.resolver.Resolve(p)
	if err := m.gateway.ClearStorageData(ctx, part); err != nil {
		return fmt.Errorf("failed to clear storage for %s: %w", name, err)
	}
	if cache {
		if err := m.gateway.ClearCache(ctx, part); err != nil {
			return fmt.Errorf("failed to clear cache for %s: %w", name, err)
		}
	}
	m.record("clear", "ok")
	m.log.Info("Profile storage cleared", zap.String("name", name), zap.Bool("cache", cache))
	return nil
}

// Launch opens a new session window for the profile, restoring persisted
// geometry. A profile may hold several windows at once. Returns the new
// window id. Profiles created before partitions were pinned get theirs
// resolved and persisted on first launch.
func (m *Manager) Launch(ctx context.Context, name string) (string, error) {
	p, err := m.store.Find(name)
	if err != nil {
		m.record("launch", "error")
		return "", err
	}
	if p.Partition == "" {
		part := m.resolver.Resolve(p)
		if p, err = m.store.Update(name, func(pr *types.Profile) {
			pr.Partition = part
		}); err != nil {
			m.record("launch", "error")
			return "", err
		}
	}

	sess, err := m.windows.Open(ctx, p.Name, window.Restore(p))
	if err != nil {
		m.record("launch", "error")
		return "", fmt.Errorf("failed to open window for %s: %w", name, err)
	}

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()
	m.registry.Register(p.Name, sess.ID())

	m.record("launch", "ok")
	m.log.Info("Profile launched",
		zap.String("name", p.Name),
		zap.String("window_id", sess.ID()),
	)
	m.active()
	m.gauges()
	return sess.ID(), nil
}

// Quit closes every open window of the named profile, persisting each
// window's geometry first.
func (m *Manager) Quit(name string) error {
	ids := m.registry.Windows(name)
	var lastErr error
	for _, id := range ids {
		m.SaveWindowState(id)
		m.mu.Lock()
		sess := m.sessions[id]
		m.mu.Unlock()
		if sess != nil {
			if err := sess.Close(); err != nil {
				lastErr = err
			}
		}
		m.OnWindowClosed(id)
	}
	if len(ids) > 0 {
		m.record("quit", "ok")
	}
	return lastErr
}

// OnWindowClosed is the close callback for the windowing backend. Idempotent
// per window id.
func (m *Manager) OnWindowClosed(windowID string) {
	m.mu.Lock()
	delete(m.sessions, windowID)
	m.mu.Unlock()

	if name, last := m.registry.Unregister(windowID); name != "" {
		m.log.Info("Window closed",
			zap.String("name", name),
			zap.String("window_id", windowID),
			zap.Bool("last", last),
		)
		m.active()
		m.gauges()
	}
}

// SaveWindowState captures the current geometry of one window into its
// profile. Windows reporting invalid geometry leave the stored state alone.
func (m *Manager) SaveWindowState(windowID string) {
	m.mu.Lock()
	sess := m.sessions[windowID]
	m.mu.Unlock()
	if sess == nil {
		return
	}
	ws := window.Capture(sess)
	if ws == nil {
		return
	}

	name, ok := m.registry.Owner(windowID)
	if !ok {
		return
	}
	if err := m.store.SetWinState(name, ws); err != nil {
		m.log.Warn("Window state save failed", zap.String("name", name), zap.Error(err))
	}
}

// ResetWinState clears stored geometry so the next launch opens maximized.
func (m *Manager) ResetWinState(name string) error {
	if err := m.store.SetWinState(name, nil); err != nil {
		return err
	}
	m.changed()
	return nil
}

// IsActive reports whether the profile has an open window.
func (m *Manager) IsActive(name string) bool {
	return m.registry.IsActive(name)
}

// ActiveNames returns profiles with open windows, sorted.
func (m *Manager) ActiveNames() []string {
	return m.registry.ActiveNames()
}

func (m *Manager) changed() {
	m.events.ProfilesChanged(m.store.List())
	m.gauges()
}

func (m *Manager) active() {
	m.events.ActiveChanged(m.registry.ActiveNames())
}

func (m *Manager) record(op, outcome string) {
	if m.metrics != nil {
		m.metrics.RecordProfileOp(op, outcome)
	}
}

func (m *Manager) gauges() {
	if m.metrics == nil {
		return
	}
	m.metrics.SetProfiles(m.store.Count())
	m.metrics.SetActiveSessions(m.registry.WindowCount())
}
