package query

import (
	"net/url"
	"slices"
	"strings"
)

// Key identifies a cached result.
type Key []string

// K builds a Key from its parts.
func K(parts ...string) Key { return Key(parts) }

// With returns a new Key extended with parts.
func (k Key) With(parts ...string) Key {
	return append(slices.Clip(k), parts...)
}

// HasPrefix reports whether every part of prefix matches the head of k.
func (k Key) HasPrefix(prefix Key) bool {
	return len(prefix) <= len(k) && slices.Equal(k[:len(prefix)], prefix)
}

// String returns the parts joined by "/", each one path escaped so that
// distinct keys never share a string.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
