// Package registry tracks which profiles currently have open session
// windows.
//
// The registry is keyed by profile display name. Each key maps to the set
// of window identifiers open for that profile; a profile with zero windows
// has no key at all, so key presence and "active" are the same predicate.
// Keys follow renames atomically, keeping live windows attached to their
// profile when the name changes.
//
// Purely in-memory: restart clears it, which matches reality since windows
// do not survive the process.
package registry
