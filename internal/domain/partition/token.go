package partition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
)

// TokenPrefix namespaces profile partitions inside the Partitions root.
const TokenPrefix = "profile-"

var unsafeTokenChars = regexp.MustCompile(`[^a-zA-Z0-9-_ ]`)

// sanitizeToken replaces every character outside [a-zA-Z0-9-_ ] with an
// underscore. This is the current-format token body.
func sanitizeToken(name string) string {
	return unsafeTokenChars.ReplaceAllString(name, "_")
}

// TokenFromName derives the preferred (current-format) partition identifier
// for a display name, including the persistence prefix:
// "persist:profile-<sanitized name>".
func TokenFromName(name string) string {
	return paths.PersistPrefix + TokenPrefix + sanitizeToken(name)
}

// candidateFuncs is the ordered legacy-scheme table: each entry derives the
// directory basename a given display name would have produced under one
// historical naming scheme. Resolution tries them in this order, first
// existing directory wins. Do not reorder.
var candidateFuncs = []func(name string) string{
	func(name string) string { return TokenPrefix + sanitizeToken(name) }, // current scheme
	func(name string) string { return TokenPrefix + percentEncode(name) }, // percent-encoded era
	func(name string) string { return TokenPrefix + name },                // raw, unescaped era
}

// CandidatesFromName returns every directory basename this name could have
// produced under past naming schemes: each scheme's token, plus a
// trailing-underscore variant of each (unless the token already ends in
// "_", which must not be doubled). The result is deterministic, duplicate
// free, and ordered by scheme priority.
func CandidatesFromName(name string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(c string) {
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	for _, derive := range candidateFuncs {
		add(derive(name))
	}
	for _, derive := range candidateFuncs {
		if c := derive(name); !strings.HasSuffix(c, "_") {
			add(c + "_")
		}
	}
	return out
}

// VariantsFromToken returns every directory basename that could represent
// the SAME partition identifier under different historical schemes:
// the token itself, its percent decode/encode round-trips, the
// underscore-sanitized human form, all of those with the "profile-" prefix
// restored if missing, and each with an optional trailing underscore.
//
// Derivation starts from the partition string only, never from a display
// name, so a sweep over the result cannot touch another profile's data.
func VariantsFromToken(partition string) []string {
	base := paths.StripPersist(partition)

	var out []string
	seen := make(map[string]struct{})
	add := func(v string) {
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(base)

	decoded := base
	if d, err := percentDecode(base); err == nil {
		decoded = d
	}
	add(decoded)
	add(percentEncode(decoded))
	add(sanitizeToken(decoded))

	for _, v := range append([]string(nil), out...) {
		if !strings.HasPrefix(v, TokenPrefix) {
			add(TokenPrefix + v)
		}
	}
	for _, v := range append([]string(nil), out...) {
		if !strings.HasSuffix(v, "_") {
			add(v + "_")
		}
	}
	return out
}

// percentEncode mirrors the encoding the percent-encoded-era sanitizer
// used: every byte outside the unreserved set [A-Za-z0-9-_.!~*'()] becomes
// %XX (uppercase hex, UTF-8 bytes). This is pinned behavior; url.QueryEscape
// and url.PathEscape both differ in which bytes they leave alone.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedByte(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// percentDecode reverses percentEncode. Malformed escapes are an error and
// callers fall back to the undecoded input.
func percentDecode(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated percent escape at offset %d", i)
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("invalid percent escape %q at offset %d", s[i:i+3], i)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func isUnreservedByte(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
