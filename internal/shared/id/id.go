// Package id mints the process-unique handles used by the daemon.
//
// Window handles and request IDs are prefixed ULIDs (win_*, req_*):
// lexicographically sortable, unique across the process, and readable in
// logs. Profile identity deliberately does NOT come from this package:
// profiles are keyed by display name and their partition identifier is a
// pure function of stored state, never random.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WindowID identifies one open session window.
type WindowID string

// RequestID identifies an API request for log correlation.
type RequestID string

// Prefixes keep the namespaces apart in logs.
const (
	WindowPrefix  = "win"
	RequestPrefix = "req"
)

var mu sync.Mutex

func next() ulid.ULID {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
}

// NewWindowID mints a window handle.
func NewWindowID() WindowID {
	return WindowID(WindowPrefix + "_" + next().String())
}

// NewRequestID mints a request correlation ID.
func NewRequestID() RequestID {
	return RequestID(RequestPrefix + "_" + next().String())
}

func (id WindowID) String() string  { return string(id) }
func (id RequestID) String() string { return string(id) }
