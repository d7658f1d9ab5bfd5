package registry

import (
	"sort"
	"sync"
)

// Manager is the active-session registry. Safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	byName map[string]map[string]struct{} // profile name -> window ids
	byID   map[string]string              // window id -> profile name
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{
		byName: make(map[string]map[string]struct{}),
		byID:   make(map[string]string),
	}
}

// Register records a window as belonging to the named profile. Reports
// whether this is the profile's first open window.
func (m *Manager) Register(name, windowID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.byName[name]
	if !ok {
		set = make(map[string]struct{})
		m.byName[name] = set
	}
	set[windowID] = struct{}{}
	m.byID[windowID] = name
	return !ok
}

// Unregister removes a window by id. Returns the profile name it belonged
// to and whether that profile now has no windows left. Unknown ids return
// ("", false) so close-event races are harmless.
func (m *Manager) Unregister(windowID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, ok := m.byID[windowID]
	if !ok {
		return "", false
	}
	delete(m.byID, windowID)

	set := m.byName[name]
	delete(set, windowID)
	if len(set) == 0 {
		delete(m.byName, name)
		return name, true
	}
	return name, false
}

// RenameKey atomically moves all windows from one profile name to another.
// A no-op when the old name has no open windows.
func (m *Manager) RenameKey(oldName, newName string) {
	if oldName == newName {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.byName[oldName]
	if !ok {
		return
	}
	delete(m.byName, oldName)
	dest, ok := m.byName[newName]
	if !ok {
		m.byName[newName] = set
		for id := range set {
			m.byID[id] = newName
		}
		return
	}
	for id := range set {
		dest[id] = struct{}{}
		m.byID[id] = newName
	}
}

// Owner returns the profile name a window id belongs to.
func (m *Manager) Owner(windowID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.byID[windowID]
	return name, ok
}

// IsActive reports whether the named profile has at least one open window.
func (m *Manager) IsActive(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byName[name]) > 0
}

// ActiveNames returns the sorted list of profiles with open windows.
func (m *Manager) ActiveNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Windows returns the window ids open for a profile.
func (m *Manager) Windows(name string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.byName[name]))
	for id := range m.byName[name] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WindowCount returns the total number of open windows across profiles.
func (m *Manager) WindowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
