package settings

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: zap.NewNop()}
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	s := NewStore(paths.Layout{DataDir: t.TempDir()}, testLogger())
	assert.Equal(t, types.DefaultSettings(), s.Get())
}

func TestMalformedFileYieldsDefaults(t *testing.T) {
	layout := paths.Layout{DataDir: t.TempDir()}
	require.NoError(t, os.WriteFile(layout.SettingsFile(), []byte("nope{"), 0o644))

	s := NewStore(layout, testLogger())
	assert.Equal(t, types.DefaultSettings(), s.Get())
}

func TestPartialFileKeepsDefaultsForMissingFields(t *testing.T) {
	layout := paths.Layout{DataDir: t.TempDir()}
	require.NoError(t, os.WriteFile(layout.SettingsFile(), []byte(`{"checkUpdates":false}`), 0o644))

	s := NewStore(layout, testLogger())
	got := s.Get()
	assert.False(t, got.CheckUpdates)
	assert.True(t, got.NewsEnabled)
	assert.True(t, got.ConfirmQuit)
}

func TestUpdatePersists(t *testing.T) {
	layout := paths.Layout{DataDir: t.TempDir()}
	s := NewStore(layout, testLogger())

	_, err := s.Update(func(st *types.Settings) {
		st.ConfirmQuit = false
	})
	require.NoError(t, err)

	reloaded := NewStore(layout, testLogger())
	assert.False(t, reloaded.Get().ConfirmQuit)
	assert.True(t, reloaded.Get().CheckUpdates)
}
