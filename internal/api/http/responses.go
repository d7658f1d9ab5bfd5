package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toffeegg/flyffu-launcherd/internal/domain/profile"
)

// ok writes the success envelope.
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}

// fail writes the error envelope with the status a sentinel maps to.
// Expected failures (bad names, collisions, missing profiles) are client
// errors; everything else is a 500.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, profile.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, profile.ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, profile.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

// badRequest writes a 400 with a plain message.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

// unavailable writes a 503 for disabled or failing optional features.
func unavailable(c *gin.Context, msg string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": msg})
}
