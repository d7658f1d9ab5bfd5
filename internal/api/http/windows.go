package http

import (
	"github.com/gin-gonic/gin"

	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// ReportWindowState is the shell's geometry callback: the native window
// moved, resized, or toggled maximize. The state is mirrored into the
// tracker and persisted onto the owning profile.
func (h *Handlers) ReportWindowState(c *gin.Context) {
	var body struct {
		Bounds      *types.Bounds `json:"bounds"`
		IsMaximized bool          `json:"isMaximized"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid window state body")
		return
	}
	windowID := c.Param("id")
	if err := h.windows.UpdateState(windowID, body.Bounds, body.IsMaximized); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.launcher.SaveWindowState(windowID)
	ok(c, gin.H{"saved": true})
}

// ReportWindowClosed is the shell's close callback.
func (h *Handlers) ReportWindowClosed(c *gin.Context) {
	windowID := c.Param("id")
	h.launcher.SaveWindowState(windowID)
	h.windows.Forget(windowID)
	h.launcher.OnWindowClosed(windowID)
	ok(c, gin.H{"closed": true})
}
