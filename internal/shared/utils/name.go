// Package utils provides small shared helpers with no domain dependencies.
package utils

import (
	"regexp"
	"strings"
)

// MaxProfileNameLength caps display names. Longer input is truncated, not
// rejected.
const MaxProfileNameLength = 40

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeDisplayName normalizes a user-supplied profile name: trims,
// collapses internal whitespace runs to single spaces, and truncates to
// MaxProfileNameLength characters. An empty result is invalid and callers
// must reject it.
func SanitizeDisplayName(raw string) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	if runes := []rune(name); len(runes) > MaxProfileNameLength {
		name = strings.TrimSpace(string(runes[:MaxProfileNameLength]))
	}
	return name
}

var cloneSuffix = regexp.MustCompile(`(?i)\bCopy(?:\s+\d+)?$`)

// InferIsClone reports whether a name looks like a clone ("X Copy",
// "X Copy 2"). Used to upgrade legacy records that predate the isClone
// flag; explicit flags always win over this heuristic.
func InferIsClone(name string) bool {
	return cloneSuffix.MatchString(strings.TrimSpace(name))
}
