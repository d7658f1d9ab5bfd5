package transfer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/domain/partition"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/profile"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/settings"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

func newTestManager(t *testing.T) (*Manager, *profile.Store) {
	t.Helper()
	layout := paths.Layout{DataDir: t.TempDir()}
	log := &logging.Logger{Logger: zap.NewNop()}
	profiles := profile.NewStore(layout, log)
	prefs := settings.NewStore(layout, log)
	return NewManager(profiles, prefs, partition.NewResolver(layout), log), profiles
}

func TestExportImportRoundTrip(t *testing.T) {
	src, srcStore := newTestManager(t)

	_, err := srcStore.Add(types.Profile{Name: "Main", Job: "Blade", Partition: "persist:profile-Main"})
	require.NoError(t, err)
	_, err = srcStore.Add(types.Profile{
		Name:      "Alt",
		Partition: "persist:profile-Alt",
		WinState:  &types.WinState{Bounds: &types.Bounds{Width: 1024, Height: 768}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	// Output is gzip-compressed.
	raw := buf.Bytes()
	require.GreaterOrEqual(t, len(raw), 2)
	assert.Equal(t, byte(0x1f), raw[0])
	assert.Equal(t, byte(0x8b), raw[1])

	dst, dstStore := newTestManager(t)
	res, err := dst.Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Empty(t, res.Skipped)

	p, err := dstStore.Find("Alt")
	require.NoError(t, err)
	assert.Equal(t, "persist:profile-Alt", p.Partition)
	require.NotNil(t, p.WinState)
	assert.Equal(t, 1024, p.WinState.Bounds.Width)
}

func TestImportSkipsNameCollisions(t *testing.T) {
	src, srcStore := newTestManager(t)
	_, err := srcStore.Add(types.Profile{Name: "Main", Partition: "persist:profile-Main"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst, dstStore := newTestManager(t)
	_, err = dstStore.Add(types.Profile{Name: "Main", Job: "Ranger", Partition: "persist:profile-Main"})
	require.NoError(t, err)

	res, err := dst.Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, []string{"Main"}, res.Skipped)

	// Existing profile untouched.
	p, err := dstStore.Find("Main")
	require.NoError(t, err)
	assert.Equal(t, "Ranger", p.Job)
}

func TestImportPlainJSONArray(t *testing.T) {
	dst, dstStore := newTestManager(t)

	legacy := `[{"name":"FromOldExport","job":"Psykeeper"}]`
	res, err := dst.Import(strings.NewReader(legacy))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	p, err := dstStore.Find("FromOldExport")
	require.NoError(t, err)
	assert.Equal(t, "Psykeeper", p.Job)
	assert.Equal(t, "persist:profile-FromOldExport", p.Partition)
}

func TestImportRejectsGarbage(t *testing.T) {
	dst, _ := newTestManager(t)
	_, err := dst.Import(strings.NewReader("definitely not a bundle"))
	assert.Error(t, err)
}

func TestImportRejectsNewerBundle(t *testing.T) {
	dst, _ := newTestManager(t)
	_, err := dst.Import(strings.NewReader(`{"version":99,"profiles":[]}`))
	assert.Error(t, err)
}
