// Package settings persists the small flat user-preferences object.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// Store holds settings.json. Missing or malformed files degrade to
// defaults; settings can never block startup.
type Store struct {
	mu       sync.RWMutex
	path     string
	log      *logging.Logger
	settings types.Settings
}

// NewStore loads settings from the layout.
func NewStore(layout paths.Layout, log *logging.Logger) *Store {
	s := &Store{path: layout.SettingsFile(), log: log}
	s.settings = s.load()
	return s
}

// Get returns the current settings.
func (s *Store) Get() types.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update mutates settings through fn and persists the result.
func (s *Store) Update(fn func(st *types.Settings)) (types.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	fn(&next)

	data, err := sonic.MarshalIndent(next, "", "  ")
	if err != nil {
		return types.Settings{}, fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return types.Settings{}, fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return types.Settings{}, fmt.Errorf("failed to write settings: %w", err)
	}
	s.settings = next
	return next, nil
}

func (s *Store) load() types.Settings {
	out := types.DefaultSettings()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return out
	}
	// Unmarshal over the defaults so fields added in later releases keep
	// their default when absent from an older file.
	if err := sonic.Unmarshal(data, &out); err != nil {
		s.log.Warn("Settings file unreadable, using defaults", zap.Error(err))
		return types.DefaultSettings()
	}
	return out
}
