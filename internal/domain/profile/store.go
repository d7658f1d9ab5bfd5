package profile

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
	"github.com/toffeegg/flyffu-launcherd/internal/shared/utils"
)

// Store is the durable profile list. All reads serve from memory; every
// mutation rewrites profiles.json before returning, so a crash never loses
// an acknowledged change.
type Store struct {
	mu       sync.RWMutex
	path     string
	log      *logging.Logger
	profiles []types.Profile
}

// NewStore loads profiles.json from the layout. A missing file yields an
// empty store; a corrupt file is logged and treated as empty rather than
// blocking startup.
func NewStore(layout paths.Layout, log *logging.Logger) *Store {
	s := &Store{path: layout.ProfilesFile(), log: log}
	s.profiles = s.load()
	return s
}

// List returns a copy of all profiles in display order.
func (s *Store) List() []types.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.profiles)
}

// Count returns the number of stored profiles.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Find returns the profile with the given display name.
func (s *Store) Find(name string) (types.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(name); i >= 0 {
		return cloneOne(s.profiles[i]), nil
	}
	return types.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Add validates and appends a new profile. The name is sanitized first and
// must be unique among stored profiles. Returns the stored record.
func (s *Store) Add(p types.Profile) (types.Profile, error) {
	p.Name = utils.SanitizeDisplayName(p.Name)
	if p.Name == "" {
		return types.Profile{}, ErrInvalidName
	}
	p.Job = types.NormalizeJob(p.Job)
	p.WinState = sanitizeWinState(p.WinState)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(p.Name) >= 0 {
		return types.Profile{}, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}
	s.profiles = append(s.profiles, p)
	if err := s.save(); err != nil {
		s.profiles = s.profiles[:len(s.profiles)-1]
		return types.Profile{}, err
	}
	return cloneOne(p), nil
}

// Update mutates the named profile through fn and persists the result.
// The profile name cannot change here; use Rename for that.
func (s *Store) Update(name string, fn func(p *types.Profile)) (types.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(name)
	if i < 0 {
		return types.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	prev := cloneOne(s.profiles[i])
	fn(&s.profiles[i])
	s.profiles[i].Name = prev.Name
	s.profiles[i].Job = types.NormalizeJob(s.profiles[i].Job)
	s.profiles[i].WinState = sanitizeWinState(s.profiles[i].WinState)
	if err := s.save(); err != nil {
		s.profiles[i] = prev
		return types.Profile{}, err
	}
	return cloneOne(s.profiles[i]), nil
}

// Rename changes a profile's display name. The partition field is left
// untouched: storage identity survives renames. Returns the updated record.
func (s *Store) Rename(oldName, newName string) (types.Profile, error) {
	newName = utils.SanitizeDisplayName(newName)
	if newName == "" {
		return types.Profile{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(oldName)
	if i < 0 {
		return types.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}
	if j := s.index(newName); j >= 0 && j != i {
		return types.Profile{}, fmt.Errorf("%w: %s", ErrDuplicateName, newName)
	}
	prev := s.profiles[i].Name
	s.profiles[i].Name = newName
	if err := s.save(); err != nil {
		s.profiles[i].Name = prev
		return types.Profile{}, err
	}
	return cloneOne(s.profiles[i]), nil
}

// Remove deletes the named profile and returns the removed record.
func (s *Store) Remove(name string) (types.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(name)
	if i < 0 {
		return types.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	removed := s.profiles[i]
	backup := cloneAll(s.profiles)
	s.profiles = append(s.profiles[:i], s.profiles[i+1:]...)
	if err := s.save(); err != nil {
		s.profiles = backup
		return types.Profile{}, err
	}
	return cloneOne(removed), nil
}

// Reorder moves the named profiles to the front, in the given order. The
// list may be partial; profiles not mentioned keep their relative order
// after the moved ones. Unknown or repeated names leave the store
// unchanged.
func (s *Store) Reorder(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]types.Profile, 0, len(s.profiles))
	used := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := used[name]; dup {
			return fmt.Errorf("%w: duplicate name in reorder list: %s", ErrInvalidName, name)
		}
		used[name] = struct{}{}
		i := s.index(name)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		next = append(next, s.profiles[i])
	}
	for _, p := range s.profiles {
		if _, moved := used[p.Name]; !moved {
			next = append(next, p)
		}
	}
	backup := s.profiles
	s.profiles = next
	if err := s.save(); err != nil {
		s.profiles = backup
		return err
	}
	return nil
}

// SetWinState persists window geometry for the named profile. A nil state
// clears the stored geometry.
func (s *Store) SetWinState(name string, ws *types.WinState) error {
	_, err := s.Update(name, func(p *types.Profile) {
		p.WinState = ws.Clone()
	})
	return err
}

// PinPartitions stores an effective partition identifier on every record
// missing one and writes the normalized list back. Run once at startup: it
// upgrades files written by older releases (bare-string entries, records
// without a partition field) in one shot, so the on-disk list matches what
// the daemon resolved. resolve maps a record to its effective partition.
func (s *Store) PinPartitions(resolve func(types.Profile) string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.profiles {
		if s.profiles[i].Partition == "" {
			s.profiles[i].Partition = resolve(cloneOne(s.profiles[i]))
		}
	}
	return s.save()
}

// NextCloneName returns the first free clone name for a source profile:
// "Name Copy", then "Name Copy 2", "Name Copy 3", and so on. Candidates
// exceeding the display-name cap fail with ErrInvalidName.
func (s *Store) NextCloneName(source string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for n := 1; ; n++ {
		cand := source + " Copy"
		if n > 1 {
			cand = fmt.Sprintf("%s Copy %d", source, n)
		}
		if len([]rune(cand)) > utils.MaxProfileNameLength {
			return "", fmt.Errorf("%w: clone name %q exceeds %d characters", ErrInvalidName, cand, utils.MaxProfileNameLength)
		}
		if s.index(cand) < 0 {
			return cand, nil
		}
	}
}

// index must be called with s.mu held (read or write).
func (s *Store) index(name string) int {
	for i, p := range s.profiles {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// load reads and upgrades profiles.json. Never fails: a missing file is a
// fresh install, a corrupt one is logged and replaced on the next save.
func (s *Store) load() []types.Profile {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var raw []rawProfile
	if err := sonic.Unmarshal(data, &raw); err != nil {
		s.log.Warn("Profile store unreadable, starting empty", zap.Error(err))
		return nil
	}
	out := make([]types.Profile, 0, len(raw))
	for _, r := range raw {
		p := r.Profile
		if !normalize(&p) {
			s.log.Warn("Dropping profile with empty name")
			continue
		}
		out = append(out, p)
	}
	return out
}

// save must be called with s.mu held for writing.
func (s *Store) save() error {
	list := s.profiles
	if list == nil {
		list = []types.Profile{}
	}
	data, err := sonic.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

func cloneOne(p types.Profile) types.Profile {
	p.WinState = p.WinState.Clone()
	return p
}

func cloneAll(list []types.Profile) []types.Profile {
	out := make([]types.Profile, len(list))
	for i, p := range list {
		out[i] = cloneOne(p)
	}
	return out
}
