package window

import (
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

// Session is one open profile window. Implemented by the windowing
// backend; tests substitute a mock.
type Session interface {
	// ID returns the stable window identifier used by the registry.
	ID() string
	// Bounds returns the current outer rectangle.
	Bounds() types.Bounds
	// NormalBounds returns the rectangle the window returns to when
	// unmaximized. Equal to Bounds for an unmaximized window.
	NormalBounds() types.Bounds
	IsMaximized() bool
	Close() error
}

// Options describes how a new profile window should open.
type Options struct {
	// Bounds to open at, nil to let the backend pick.
	Bounds *types.Bounds
	// Maximize after the window is shown.
	Maximize bool
	// Frame controls the native window chrome.
	Frame bool
	// Muted opens the session with audio off.
	Muted bool
	// Partition is the storage partition the window's web session binds to.
	Partition string
}

// Capture reads a window's geometry into a persistable WinState.
//
// A maximized window stores IsMaximized plus its normal (restored) bounds
// so unmaximizing later lands where the user left it. Windows reporting
// dimensions below the minimum edge yield nil: zero-size readings during
// minimize or teardown, and degenerate rectangles in general, must never
// overwrite good stored geometry. Undersized state that arrives through
// the store write path instead (imports, API patches) is clamped there.
func Capture(s Session) *types.WinState {
	if s.IsMaximized() {
		ws := &types.WinState{IsMaximized: true}
		if b, ok := captured(s.NormalBounds()); ok {
			ws.Bounds = &b
		}
		return ws
	}
	b, ok := captured(s.Bounds())
	if !ok {
		return nil
	}
	return &types.WinState{Bounds: &b}
}

// Restore converts stored geometry into open options for the profile.
// A profile with no stored state opens maximized.
func Restore(p types.Profile) Options {
	opts := Options{
		Frame:     p.Frame,
		Muted:     p.Muted,
		Partition: p.Partition,
	}
	ws := p.WinState
	if ws == nil {
		opts.Maximize = true
		return opts
	}
	opts.Maximize = ws.IsMaximized
	if ws.Bounds != nil {
		if b, ok := clamped(*ws.Bounds); ok {
			opts.Bounds = &b
		}
	}
	if opts.Bounds == nil && !opts.Maximize {
		opts.Maximize = true
	}
	return opts
}

// captured accepts only rectangles at or above the minimum edge. Used on
// the read side, where an undersized reading means nothing worth keeping
// was measured.
func captured(b types.Bounds) (types.Bounds, bool) {
	if b.Width < types.MinWindowEdge || b.Height < types.MinWindowEdge {
		return types.Bounds{}, false
	}
	return copyPos(b), true
}

// clamped validates and normalizes a rectangle: non-positive dimensions
// are rejected, small ones are raised to the minimum edge.
func clamped(b types.Bounds) (types.Bounds, bool) {
	if b.Width <= 0 || b.Height <= 0 {
		return types.Bounds{}, false
	}
	if b.Width < types.MinWindowEdge {
		b.Width = types.MinWindowEdge
	}
	if b.Height < types.MinWindowEdge {
		b.Height = types.MinWindowEdge
	}
	return copyPos(b), true
}

func copyPos(b types.Bounds) types.Bounds {
	if b.X != nil {
		x := *b.X
		b.X = &x
	}
	if b.Y != nil {
		y := *b.Y
		b.Y = &y
	}
	return b
}
