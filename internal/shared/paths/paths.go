package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppDirName is the data directory name, kept from the original desktop
// releases so upgrades find their existing profiles.
const AppDirName = "FlyffU Launcher"

// File and directory names under the data directory.
const (
	ProfilesFileName = "profiles.json"
	PendingFileName  = "pending_deletes.json"
	SettingsFileName = "settings.json"
	PartitionsDir    = "Partitions"
	TrashDir         = "Trash"
)

// PersistPrefix marks a partition identifier as durable storage. It is a
// persistence-layer concern and is stripped before building directory paths.
const PersistPrefix = "persist:"

// Layout resolves all persisted-state paths relative to one data directory.
type Layout struct {
	DataDir string
}

// DefaultDataDir returns the per-user data directory, e.g.
// ~/.config/FlyffU Launcher on Linux.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// ProfilesFile returns the path of the profile store.
func (l Layout) ProfilesFile() string {
	return filepath.Join(l.DataDir, ProfilesFileName)
}

// PendingFile returns the path of the pending-delete queue.
func (l Layout) PendingFile() string {
	return filepath.Join(l.DataDir, PendingFileName)
}

// SettingsFile returns the path of the user preferences file.
func (l Layout) SettingsFile() string {
	return filepath.Join(l.DataDir, SettingsFileName)
}

// PartitionsRoot returns the directory that holds one subdirectory per
// storage partition.
func (l Layout) PartitionsRoot() string {
	return filepath.Join(l.DataDir, PartitionsDir)
}

// PartitionDir returns the directory for a partition identifier. Any
// "persist:" prefix is stripped first.
func (l Layout) PartitionDir(partition string) string {
	return filepath.Join(l.PartitionsRoot(), StripPersist(partition))
}

// TrashRoot returns the staging directory used while deleting partitions.
// Never user-visible storage.
func (l Layout) TrashRoot() string {
	return filepath.Join(l.DataDir, TrashDir)
}

// Ensure creates the data and trash directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.DataDir, l.TrashRoot()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// StripPersist removes the persistence-layer prefix from a partition
// identifier, yielding the directory basename.
func StripPersist(partition string) string {
	return strings.TrimPrefix(partition, PersistPrefix)
}
