package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportProfiles streams a compressed bundle of all profiles and settings.
func (h *Handlers) ExportProfiles(c *gin.Context) {
	filename := fmt.Sprintf("flyffu-profiles-%s.json.gz", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if err := h.transfer.Export(c.Writer); err != nil {
		// Headers are gone; all we can do is log and cut the stream.
		h.log.Error("Profile export failed", zap.Error(err))
	}
}

// ImportProfiles merges an uploaded bundle into the store. Accepts the
// bundle as the raw request body.
func (h *Handlers) ImportProfiles(c *gin.Context) {
	res, err := h.transfer.Import(c.Request.Body)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	ok(c, res)
}
