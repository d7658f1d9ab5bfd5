// Package transfer moves profiles between machines as a compressed
// bundle, replacing clipboard-sized JSON blobs.
package transfer

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/domain/partition"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/profile"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/settings"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// bundleVersion is bumped when the bundle schema changes incompatibly.
const bundleVersion = 1

// Bundle is the export payload. Window state travels with the profile;
// partition identifiers do too, so re-importing on the same machine
// reattaches profiles to their existing data.
type Bundle struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Profiles   []types.Profile `json:"profiles"`
	Settings   types.Settings  `json:"settings"`
}

// ImportResult summarizes what an import changed.
type ImportResult struct {
	Added   int      `json:"added"`
	Skipped []string `json:"skipped,omitempty"`
}

// Manager exports and imports profile bundles.
type Manager struct {
	profiles *profile.Store
	settings *settings.Store
	resolver *partition.Resolver
	log      *logging.Logger
}

// NewManager creates a transfer manager.
func NewManager(p *profile.Store, s *settings.Store, r *partition.Resolver, log *logging.Logger) *Manager {
	return &Manager{profiles: p, settings: s, resolver: r, log: log}
}

// Export writes a gzip-compressed bundle of all profiles and settings.
func (m *Manager) Export(w io.Writer) error {
	bundle := Bundle{
		Version:    bundleVersion,
		ExportedAt: time.Now().UTC(),
		Profiles:   m.profiles.List(),
		Settings:   m.settings.Get(),
	}
	data, err := sonic.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	gz := gzip.NewWriter(w)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish bundle: %w", err)
	}
	return nil
}

// Import merges a bundle into the store. Profiles whose names are already
// taken are skipped, never overwritten. Settings from the bundle are
// ignored: imports add profiles, they do not reconfigure the launcher.
// Accepts both compressed bundles and the plain JSON of older exports.
func (m *Manager) Import(r io.Reader) (ImportResult, error) {
	data, err := readMaybeCompressed(r)
	if err != nil {
		return ImportResult{}, err
	}

	var bundle Bundle
	if err := sonic.Unmarshal(data, &bundle); err != nil {
		// Oldest exports were a bare profile array.
		var list []types.Profile
		if err2 := sonic.Unmarshal(data, &list); err2 != nil {
			return ImportResult{}, fmt.Errorf("unrecognized bundle format: %w", err)
		}
		bundle.Profiles = list
	}
	if bundle.Version > bundleVersion {
		return ImportResult{}, fmt.Errorf("bundle version %d is newer than supported %d", bundle.Version, bundleVersion)
	}

	var res ImportResult
	for _, p := range bundle.Profiles {
		if p.Partition == "" {
			p.Partition = m.resolver.Resolve(p)
		}
		if _, err := m.profiles.Add(p); err != nil {
			m.log.Warn("Skipping profile during import",
				zap.String("name", p.Name),
				zap.Error(err),
			)
			res.Skipped = append(res.Skipped, p.Name)
			continue
		}
		res.Added++
	}
	m.log.Info("Import finished",
		zap.Int("added", res.Added),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// readMaybeCompressed sniffs the gzip magic bytes and decompresses when
// present.
func readMaybeCompressed(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open bundle: %w", err)
		}
		defer gz.Close()
		return io.ReadAll(io.LimitReader(gz, 16<<20))
	}
	return io.ReadAll(io.LimitReader(br, 16<<20))
}
