package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// profileView is a profile plus its live status.
type profileView struct {
	types.Profile
	Active bool `json:"active"`
}

func (h *Handlers) view(p types.Profile) profileView {
	return profileView{Profile: p, Active: h.launcher.IsActive(p.Name)}
}

// ListProfiles returns all profiles with their active status.
func (h *Handlers) ListProfiles(c *gin.Context) {
	list := h.launcher.List()
	views := make([]profileView, len(list))
	for i, p := range list {
		views[i] = h.view(p)
	}
	ok(c, gin.H{"profiles": views, "active": h.launcher.ActiveNames()})
}

// GetProfile returns one profile.
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.launcher.Get(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, h.view(p))
}

// AddProfile creates a profile.
func (h *Handlers) AddProfile(c *gin.Context) {
	var body struct {
		Name  string `json:"name"`
		Job   string `json:"job"`
		Frame bool   `json:"frame"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid profile body")
		return
	}
	p, err := h.launcher.Add(body.Name, body.Job, body.Frame)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": h.view(p)})
}

// UpdateProfile patches behavioral attributes. Name and partition are not
// modifiable here.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var body struct {
		Job   *string `json:"job"`
		Frame *bool   `json:"frame"`
		Muted *bool   `json:"muted"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid profile body")
		return
	}
	p, err := h.launcher.Update(c.Param("name"), func(pr *types.Profile) {
		if body.Job != nil {
			pr.Job = *body.Job
		}
		if body.Frame != nil {
			pr.Frame = *body.Frame
		}
		if body.Muted != nil {
			pr.Muted = *body.Muted
		}
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, h.view(p))
}

// RenameProfile changes the display name, keeping partition and windows.
func (h *Handlers) RenameProfile(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid rename body")
		return
	}
	p, err := h.launcher.Rename(c.Param("name"), body.Name)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, h.view(p))
}

// DeleteProfile removes a profile; ?wipe=true also reaps partition data.
func (h *Handlers) DeleteProfile(c *gin.Context) {
	wipe, _ := strconv.ParseBool(c.DefaultQuery("wipe", "false"))
	res, err := h.launcher.Delete(c.Request.Context(), c.Param("name"), wipe)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

// CloneProfile duplicates a profile under the next free copy name.
func (h *Handlers) CloneProfile(c *gin.Context) {
	p, err := h.launcher.Clone(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": h.view(p)})
}

// LaunchProfile opens a session window.
func (h *Handlers) LaunchProfile(c *gin.Context) {
	windowID, err := h.launcher.Launch(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"windowId": windowID})
}

// QuitProfile closes every open window of the profile.
func (h *Handlers) QuitProfile(c *gin.Context) {
	name := c.Param("name")
	if _, err := h.launcher.Get(name); err != nil {
		fail(c, err)
		return
	}
	if err := h.launcher.Quit(name); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"active": h.launcher.IsActive(name)})
}

// ClearProfile wipes session storage in place; ?cache=true includes the
// HTTP cache.
func (h *Handlers) ClearProfile(c *gin.Context) {
	cache, _ := strconv.ParseBool(c.DefaultQuery("cache", "false"))
	if err := h.launcher.Clear(c.Request.Context(), c.Param("name"), cache); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"cleared": true})
}

// ResetWinState clears stored window geometry.
func (h *Handlers) ResetWinState(c *gin.Context) {
	if err := h.launcher.ResetWinState(c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"reset": true})
}

// ReorderProfiles moves the named profiles to the front of the display
// order. Partial lists are fine; unnamed profiles keep their relative
// order.
func (h *Handlers) ReorderProfiles(c *gin.Context) {
	var body struct {
		Names []string `json:"names"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid reorder body")
		return
	}
	if err := h.launcher.Reorder(body.Names); err != nil {
		fail(c, err)
		return
	}
	order := make([]string, 0)
	for _, p := range h.launcher.List() {
		order = append(order, p.Name)
	}
	ok(c, gin.H{"order": order})
}
