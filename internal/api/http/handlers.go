// Package http exposes the launcher's operation surface as a REST API
// consumed by the UI shell.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toffeegg/flyffu-launcherd/internal/domain/launcher"
	"github.com/toffeegg/flyffu-launcherd/internal/domain/settings"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/runtime"
	"github.com/toffeegg/flyffu-launcherd/internal/providers/news"
	"github.com/toffeegg/flyffu-launcherd/internal/providers/transfer"
	"github.com/toffeegg/flyffu-launcherd/internal/providers/update"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	launcher *launcher.Manager
	settings *settings.Store
	windows  *runtime.Windows
	updates  *update.Checker // nil when update checks are disabled
	news     *news.Fetcher   // nil when the news feed is disabled
	transfer *transfer.Manager
	version  string
	log      *logging.Logger
}

// NewHandlers creates the handler set. The update checker and news
// fetcher may be nil; their endpoints then answer 503.
func NewHandlers(
	lm *launcher.Manager,
	st *settings.Store,
	wins *runtime.Windows,
	up *update.Checker,
	nf *news.Fetcher,
	tr *transfer.Manager,
	version string,
	log *logging.Logger,
) *Handlers {
	return &Handlers{
		launcher: lm,
		settings: st,
		windows:  wins,
		updates:  up,
		news:     nf,
		transfer: tr,
		version:  version,
		log:      log,
	}
}

// Root handles the liveness check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "flyffu-launcherd",
		"version": h.version,
	})
}

// Health reports component state.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"profiles":     len(h.launcher.List()),
		"active":       h.launcher.ActiveNames(),
		"update_check": gin.H{"enabled": h.updates != nil},
		"news":         gin.H{"enabled": h.news != nil},
	})
}

// ListJobs returns the selectable job names.
func (h *Handlers) ListJobs(c *gin.Context) {
	ok(c, types.Jobs)
}

// GetSettings returns the user preferences.
func (h *Handlers) GetSettings(c *gin.Context) {
	ok(c, h.settings.Get())
}

// UpdateSettings patches user preferences. Only fields present in the
// body change.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var body struct {
		CheckUpdates *bool `json:"checkUpdates"`
		NewsEnabled  *bool `json:"newsEnabled"`
		ConfirmQuit  *bool `json:"confirmQuit"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid settings body")
		return
	}
	next, err := h.settings.Update(func(st *types.Settings) {
		if body.CheckUpdates != nil {
			st.CheckUpdates = *body.CheckUpdates
		}
		if body.NewsEnabled != nil {
			st.NewsEnabled = *body.NewsEnabled
		}
		if body.ConfirmQuit != nil {
			st.ConfirmQuit = *body.ConfirmQuit
		}
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, next)
}

// CheckUpdate queries the release feed.
func (h *Handlers) CheckUpdate(c *gin.Context) {
	if h.updates == nil || !h.settings.Get().CheckUpdates {
		unavailable(c, "update checks are disabled")
		return
	}
	status, err := h.updates.Check(c.Request.Context())
	if err != nil {
		unavailable(c, err.Error())
		return
	}
	ok(c, status)
}

// GetNews returns the scraped news feed.
func (h *Handlers) GetNews(c *gin.Context) {
	if h.news == nil || !h.settings.Get().NewsEnabled {
		unavailable(c, "news feed is disabled")
		return
	}
	items, err := h.news.Fetch(c.Request.Context())
	if err != nil {
		unavailable(c, err.Error())
		return
	}
	ok(c, items)
}
