package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/domain/launcher"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/partition"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/profile"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/registry"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/settings"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/runtime"
	"github.com/toffeegg/flyffu-launcherd/internal/providers/transfer"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
)

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: zap.NewNop()}
}

type nopHub struct{}

func (nopHub) Broadcast(string, interface{}) {}

type apiEnv struct {
	router   *gin.Engine
	launcher *launcher.Manager
	windows  *runtime.Windows
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testLogger()
	layout := paths.Layout{DataDir: t.TempDir()}
	require.NoError(t, layout.Ensure())

	profiles := profile.NewStore(layout, log)
	prefs := settings.NewStore(layout, log)
	resolver := partition.NewResolver(layout)
	queue := partition.NewPendingQueue(layout, log)
	reaper := partition.NewReaper(layout, queue, log)
	windows := runtime.NewWindows(nopHub{}, log)

	lm := launcher.NewManager(
		profiles,
		resolver,
		reaper,
		registry.NewManager(),
		runtime.NewGateway(layout, log),
		windows,
		log,
	)

	bundles := transfer.NewManager(profiles, prefs, resolver, log)
	h := NewHandlers(lm, prefs, windows, nil, nil, bundles, "test", log)

	router := gin.New()
	router.GET("/profiles", h.ListProfiles)
	router.POST("/profiles", h.AddProfile)
	router.PUT("/profiles/order", h.ReorderProfiles)
	router.GET("/profiles/:name", h.GetProfile)
	router.PATCH("/profiles/:name", h.UpdateProfile)
	router.DELETE("/profiles/:name", h.DeleteProfile)
	router.POST("/profiles/:name/rename", h.RenameProfile)
	router.POST("/profiles/:name/clone", h.CloneProfile)
	router.POST("/profiles/:name/launch", h.LaunchProfile)
	router.POST("/profiles/:name/quit", h.QuitProfile)
	router.POST("/profiles/:name/clear", h.ClearProfile)
	router.POST("/profiles/:name/winstate/reset", h.ResetWinState)
	router.POST("/windows/:id/state", h.ReportWindowState)
	router.POST("/windows/:id/closed", h.ReportWindowClosed)
	router.GET("/settings", h.GetSettings)
	router.PATCH("/settings", h.UpdateSettings)
	router.GET("/jobs", h.ListJobs)
	router.GET("/update/check", h.CheckUpdate)
	router.GET("/news", h.GetNews)
	router.GET("/profiles-export", h.ExportProfiles)
	router.POST("/profiles-import", h.ImportProfiles)

	return &apiEnv{router: router, launcher: lm, windows: windows}
}

type envelope struct {
	OK    bool                   `json:"ok"`
	Data  map[string]interface{} `json:"data"`
	Error string                 `json:"error"`
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		buf.Write(raw)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/gzip" {
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (e *apiEnv) addProfile(t *testing.T, name string) {
	t.Helper()
	w, _ := e.do(t, "POST", "/profiles", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAddAndGetProfile(t *testing.T) {
	e := newAPI(t)

	w, env := e.do(t, "POST", "/profiles", gin.H{"name": "Main", "job": "Blade"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.OK)
	assert.Equal(t, "Main", env.Data["name"])
	assert.Equal(t, "persist:profile-Main", env.Data["partition"])
	assert.Equal(t, "Blade", env.Data["job"])

	w, env = e.do(t, "GET", "/profiles/Main", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, env.Data["active"])
}

func TestAddProfileValidation(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Main")

	w, env := e.do(t, "POST", "/profiles", gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.OK)

	w, _ = e.do(t, "POST", "/profiles", gin.H{"name": "Main"})
	assert.Equal(t, http.StatusConflict, w.Code)

	req := httptest.NewRequest("POST", "/profiles", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfileNotFound(t *testing.T) {
	e := newAPI(t)
	w, env := e.do(t, "GET", "/profiles/Ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.OK)
	assert.NotEmpty(t, env.Error)
}

func TestListProfiles(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Alpha")
	e.addProfile(t, "Beta")

	w, env := e.do(t, "GET", "/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profiles := env.Data["profiles"].([]interface{})
	assert.Len(t, profiles, 2)
	assert.Empty(t, env.Data["active"])
}

func TestRenameProfile(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Old")
	e.addProfile(t, "Taken")

	w, env := e.do(t, "POST", "/profiles/Old/rename", gin.H{"name": "New"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New", env.Data["name"])
	// The partition keeps following the original name.
	assert.Equal(t, "persist:profile-Old", env.Data["partition"])

	w, _ = e.do(t, "POST", "/profiles/New/rename", gin.H{"name": "Taken"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = e.do(t, "POST", "/profiles/Ghost/rename", gin.H{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProfilePatch(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Main")

	w, env := e.do(t, "PATCH", "/profiles/Main", gin.H{"job": "Ringmaster", "muted": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ringmaster", env.Data["job"])
	assert.Equal(t, true, env.Data["muted"])

	// Omitted fields stay put.
	w, env = e.do(t, "PATCH", "/profiles/Main", gin.H{"frame": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ringmaster", env.Data["job"])
	assert.Equal(t, true, env.Data["frame"])
}

func TestCloneProfile(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Main")

	w, env := e.do(t, "POST", "/profiles/Main/clone", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Main Copy", env.Data["name"])
	assert.Equal(t, true, env.Data["isClone"])
	assert.NotEqual(t, "persist:profile-Main", env.Data["partition"])
}

func TestDeleteProfileWipe(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Doomed")

	w, env := e.do(t, "DELETE", "/profiles/Doomed?wipe=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, env.Data["restartRequired"])

	w, _ = e.do(t, "GET", "/profiles/Doomed", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProfileKeepData(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Kept")

	w, env := e.do(t, "DELETE", "/profiles/Kept", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, env.Data["restartRequired"])
}

func TestLaunchQuitAndWindowCallbacks(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Main")

	w, env := e.do(t, "POST", "/profiles/Main/launch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	windowID := env.Data["windowId"].(string)
	require.NotEmpty(t, windowID)

	w, env = e.do(t, "GET", "/profiles/Main", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, env.Data["active"])

	// Shell reports geometry; it lands on the profile record.
	w, _ = e.do(t, "POST", "/windows/"+windowID+"/state", gin.H{
		"bounds":      gin.H{"width": 900, "height": 650},
		"isMaximized": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = e.do(t, "GET", "/profiles/Main", nil)
	require.Equal(t, http.StatusOK, w.Code)
	winState := env.Data["winState"].(map[string]interface{})
	bounds := winState["bounds"].(map[string]interface{})
	assert.EqualValues(t, 900, bounds["width"])

	// Shell reports closure; the profile goes inactive.
	w, _ = e.do(t, "POST", "/windows/"+windowID+"/closed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, e.launcher.IsActive("Main"))
}

func TestQuitProfile(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Main")

	_, env := e.do(t, "POST", "/profiles/Main/launch", nil)
	require.NotEmpty(t, env.Data["windowId"])

	w, env := e.do(t, "POST", "/profiles/Main/quit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, env.Data["active"])

	w, _ = e.do(t, "POST", "/profiles/Ghost/quit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownWindowState(t *testing.T) {
	e := newAPI(t)
	w, _ := e.do(t, "POST", "/windows/win_nope/state", gin.H{
		"bounds": gin.H{"width": 10, "height": 10},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReorderProfiles(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "A")
	e.addProfile(t, "B")

	w, env := e.do(t, "PUT", "/profiles/order", gin.H{"names": []string{"B", "A"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.OK)

	// Partial lists are moved-to-front, unknown names are rejected.
	w, _ = e.do(t, "PUT", "/profiles/order", gin.H{"names": []string{"A"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, "PUT", "/profiles/order", gin.H{"names": []string{"Ghost"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(t, "PUT", "/profiles/order", gin.H{"names": []string{"A", "A"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetWinState(t *testing.T) {
	e := newAPI(t)
	e.addProfile(t, "Main")

	w, env := e.do(t, "POST", "/profiles/Main/winstate/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.OK)

	w, _ = e.do(t, "POST", "/profiles/Ghost/winstate/reset", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsPatch(t *testing.T) {
	e := newAPI(t)

	w, env := e.do(t, "GET", "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, env.Data["confirmQuit"])

	w, env = e.do(t, "PATCH", "/settings", gin.H{"confirmQuit": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, env.Data["confirmQuit"])
	assert.Equal(t, true, env.Data["checkUpdates"])
}

func TestJobsList(t *testing.T) {
	e := newAPI(t)
	req := httptest.NewRequest("GET", "/jobs", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		OK   bool     `json:"ok"`
		Data []string `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.OK)
	assert.Contains(t, env.Data, "Blade")
}

func TestDisabledFeatures(t *testing.T) {
	e := newAPI(t)

	w, env := e.do(t, "GET", "/update/check", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.OK)

	w, env = e.do(t, "GET", "/news", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.OK)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newAPI(t)
	src.addProfile(t, "Main")
	src.addProfile(t, "Alt")

	w, _ := src.do(t, "GET", "/profiles-export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/gzip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	bundle := w.Body.Bytes()

	dst := newAPI(t)
	dst.addProfile(t, "Main")

	req := httptest.NewRequest("POST", "/profiles-import", bytes.NewReader(bundle))
	rec := httptest.NewRecorder()
	dst.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &env))
	assert.EqualValues(t, 1, env.Data["added"])
	skipped := env.Data["skipped"].([]interface{})
	assert.Equal(t, "Main", skipped[0])
}

func TestImportRejectsGarbage(t *testing.T) {
	e := newAPI(t)
	req := httptest.NewRequest("POST", "/profiles-import", bytes.NewBufferString("not a bundle"))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
