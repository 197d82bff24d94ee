// Package ndk resolves per-architecture NDK paths and builds the compiler
// invocations producing the native libraries.
package ndk

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
)

// Arch is a target architecture name as used in configuration.
type Arch string

const (
	ArchAArch64 Arch = "aarch64"
	ArchARM     Arch = "arm"
	ArchX86_64  Arch = "x86_64"
	ArchX86     Arch = "x86"
)

// Info is the fixed per-architecture table entry.
type Info struct {
	// ABI is the directory under lib/ inside the APK.
	ABI string
	// ClangTriple prefixes the API-level clang wrapper in the NDK bin dir.
	ClangTriple string
	// LibTriple names the sysroot library and header subdirectories.
	LibTriple string
	GOARCH    string
	GOARM     string
}

var archTable = map[Arch]Info{
	ArchAArch64: {ABI: "arm64-v8a", ClangTriple: "aarch64-linux-android", LibTriple: "aarch64-linux-android", GOARCH: "arm64"},
	ArchARM:     {ABI: "armeabi", ClangTriple: "armv7a-linux-androideabi", LibTriple: "arm-linux-androideabi", GOARCH: "arm", GOARM: "7"},
	ArchX86_64:  {ABI: "x86_64", ClangTriple: "x86_64-linux-android", LibTriple: "x86_64-linux-android", GOARCH: "amd64"},
	ArchX86:     {ABI: "x86", ClangTriple: "i686-linux-android", LibTriple: "i686-linux-android", GOARCH: "386"},
}

// order is the iteration order of every selection.
var order = []Arch{ArchAArch64, ArchARM, ArchX86_64, ArchX86}

// Info returns the table entry of a. It panics on an unknown arch; use
// ParseArch for untrusted input.
func (a Arch) Info() Info {
	info, ok := archTable[a]
	if !ok {
		panic(fmt.Sprintf("ndk: unknown arch %q", string(a)))
	}
	return info
}

// ParseArch validates an architecture name.
func ParseArch(name string) (Arch, error) {
	a := Arch(name)
	if _, ok := archTable[a]; !ok {
		return "", apkerr.Configf("targets", "unknown target %q, must be one of: %s", name, strings.Join(Names(), ", "))
	}
	return a, nil
}

// Names lists every supported architecture in selection order.
func Names() []string {
	names := make([]string, len(order))
	for i, a := range order {
		names[i] = string(a)
	}
	return names
}

// Selection is the set of enabled architectures, always iterated in the
// fixed order aarch64, arm, x86_64, x86.
type Selection []Arch

// ParseSelection builds a selection from configured names. Unknown and
// duplicate names are configuration errors; an empty selection is too.
func ParseSelection(names []string) (Selection, error) {
	enabled := make(map[Arch]bool, len(names))
	for _, name := range names {
		a, err := ParseArch(name)
		if err != nil {
			return nil, err
		}
		if enabled[a] {
			return nil, apkerr.Configf("targets", "duplicate target %q", name)
		}
		enabled[a] = true
	}
	if len(enabled) == 0 {
		return nil, apkerr.Configf("targets", "no target architecture enabled")
	}

	sel := make(Selection, 0, len(enabled))
	for _, a := range order {
		if enabled[a] {
			sel = append(sel, a)
		}
	}
	return sel, nil
}

// Has reports whether a is enabled.
func (s Selection) Has(a Arch) bool {
	for _, x := range s {
		if x == a {
			return true
		}
	}
	return false
}
