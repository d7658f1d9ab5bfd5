// Package window converts between live session windows and the persisted
// geometry stored on a profile.
//
// The package owns two directions: Capture reads a window into a WinState
// fit for storage (invalid dimensions rejected, small ones clamped), and
// Restore turns a stored WinState back into open options for a new window.
// The concrete windowing backend stays behind the Session interface so the
// launcher can be exercised without a display.
package window
