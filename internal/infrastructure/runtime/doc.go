// Package runtime implements the launcher's two outward-facing contracts
// against the real environment.
//
// Gateway operates directly on partition directories: clearing storage,
// dropping caches, and copying the cookie store between partitions.
//
// Windows tracks the session windows the UI shell opens on the daemon's
// behalf. Opening a window broadcasts a window.open event; the shell
// creates the native window and reports geometry changes and closure back
// through the API, which updates the tracked state here.
package runtime
