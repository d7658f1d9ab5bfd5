package partition

import (
	"os"
	"path/filepath"

	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// Resolver derives the effective partition identifier for a profile.
//
// Resolution is a pure function of (stored partition field, name, on-disk
// legacy directory existence): never random, never time-based, so repeated
// resolution returns the same identifier until the profile is explicitly
// renamed or cloned.
type Resolver struct {
	layout paths.Layout
}

// NewResolver creates a resolver over the given data layout.
func NewResolver(layout paths.Layout) *Resolver {
	return &Resolver{layout: layout}
}

// Resolve returns the partition identifier for a profile:
//
//  1. the stored partition field, when non-empty (explicit value always
//     wins; this is what keeps renamed profiles on their original data)
//  2. else the first legacy-scheme candidate whose directory exists on
//     disk, in CandidatesFromName order
//  3. else a fresh current-format token derived from the name
func (r *Resolver) Resolve(p types.Profile) string {
	if p.Partition != "" {
		return p.Partition
	}
	if legacy, ok := r.resolveLegacy(p.Name); ok {
		return legacy
	}
	return TokenFromName(p.Name)
}

// resolveLegacy scans the legacy candidate table for an existing partition
// directory. Stat failures are treated as "not found": non-existence is the
// expected case here, not an error.
func (r *Resolver) resolveLegacy(name string) (string, bool) {
	for _, cand := range CandidatesFromName(name) {
		if dirExists(filepath.Join(r.layout.PartitionsRoot(), cand)) {
			return paths.PersistPrefix + cand, true
		}
	}
	return "", false
}

func dirExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
