package nodeid

import (
	"slices"
	"strings"
)

// String joins the segments with dots.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	return strings.Join(a.Path, ".")
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return slices.Equal(a.Path, other.Path)
}

// HasPrefix reports whether the address starts with the given segment names.
// `lib.x86` is a prefix of `lib.x86.compile` but not of `lib.x86_64.compile`.
func (a *Address) HasPrefix(names ...string) bool {
	if a == nil || len(names) > len(a.Path) {
		return false
	}
	return slices.Equal(a.Path[:len(names)], names)
}
