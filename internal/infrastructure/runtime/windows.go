package runtime

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/domain/window"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/id"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// Broadcaster pushes events to the UI shell. Implemented by the ws hub.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// Windows is the daemon-side view of the shell's session windows. It
// implements the launcher's WindowFactory.
type Windows struct {
	hub Broadcaster
	log *logging.Logger

	mu   sync.RWMutex
	wins map[string]*Window
}

// NewWindows creates an empty window tracker.
func NewWindows(hub Broadcaster, log *logging.Logger) *Windows {
	return &Windows{hub: hub, log: log, wins: make(map[string]*Window)}
}

// Open allocates a window handle, seeds its geometry from the open
// options, and tells the shell to create the native window.
func (w *Windows) Open(ctx context.Context, profileName string, opts window.Options) (window.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	win := &Window{
		id:        id.NewWindowID().String(),
		owner:     w,
		maximized: opts.Maximize,
	}
	if opts.Bounds != nil {
		win.bounds = *opts.Bounds
		win.normal = *opts.Bounds
	} else {
		win.bounds = types.Bounds{Width: 1280, Height: 720}
		win.normal = win.bounds
	}

	w.mu.Lock()
	w.wins[win.id] = win
	w.mu.Unlock()

	w.hub.Broadcast("window.open", map[string]interface{}{
		"windowId": win.id,
		"profile":  profileName,
		"options":  opts,
	})
	w.log.Info("Window open requested",
		zap.String("window_id", win.id),
		zap.String("profile", profileName),
	)
	return win, nil
}

// Get returns a tracked window.
func (w *Windows) Get(windowID string) (*Window, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	win, ok := w.wins[windowID]
	if !ok {
		return nil, fmt.Errorf("unknown window %s", windowID)
	}
	return win, nil
}

// UpdateState records geometry reported by the shell.
func (w *Windows) UpdateState(windowID string, bounds *types.Bounds, maximized bool) error {
	win, err := w.Get(windowID)
	if err != nil {
		return err
	}
	win.mu.Lock()
	defer win.mu.Unlock()
	win.maximized = maximized
	if bounds != nil {
		win.bounds = *bounds
		if !maximized {
			win.normal = *bounds
		}
	}
	return nil
}

// Forget drops a window from tracking after the shell reports it closed.
func (w *Windows) Forget(windowID string) {
	w.mu.Lock()
	delete(w.wins, windowID)
	w.mu.Unlock()
}

// Window is one tracked shell window.
type Window struct {
	id    string
	owner *Windows

	mu        sync.RWMutex
	bounds    types.Bounds
	normal    types.Bounds
	maximized bool
}

func (win *Window) ID() string { return win.id }

func (win *Window) Bounds() types.Bounds {
	win.mu.RLock()
	defer win.mu.RUnlock()
	return win.bounds
}

func (win *Window) NormalBounds() types.Bounds {
	win.mu.RLock()
	defer win.mu.RUnlock()
	return win.normal
}

func (win *Window) IsMaximized() bool {
	win.mu.RLock()
	defer win.mu.RUnlock()
	return win.maximized
}

// Close tells the shell to close the native window and drops tracking.
func (win *Window) Close() error {
	win.owner.hub.Broadcast("window.close", map[string]interface{}{
		"windowId": win.id,
	})
	win.owner.Forget(win.id)
	return nil
}
