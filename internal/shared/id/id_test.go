package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowIDsUnique(t *testing.T) {
	seen := make(map[WindowID]bool)
	for i := 0; i < 1000; i++ {
		id := NewWindowID()
		assert.False(t, seen[id], "duplicate window ID %s", id)
		seen[id] = true
	}
}

func TestPrefixes(t *testing.T) {
	win := NewWindowID().String()
	assert.True(t, strings.HasPrefix(win, "win_"))
	assert.Len(t, strings.TrimPrefix(win, "win_"), 26) // ULID canonical encoding

	req := NewRequestID().String()
	assert.True(t, strings.HasPrefix(req, "req_"))
}
