package nodeid

import "slices"

// Address is the structured identifier of a build node: a dotted path of
// segment names such as `apk.base` or `inject.aarch64.library`.
type Address struct {
	Path []string
}

// New builds an address from segment names. It panics on a name Parse would
// reject; callers pass constants and arch names.
func New(names ...string) Address {
	for _, name := range names {
		if err := checkSegment(name); err != nil {
			panic("nodeid: " + err.Error())
		}
	}
	return Address{Path: slices.Clone(names)}
}

// MustParse is like Parse but panics on malformed input.
func MustParse(rawID string) Address {
	addr, err := Parse(rawID)
	if err != nil {
		panic(err)
	}
	return *addr
}
