package ndk

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
)

// Toolchain locates the LLVM toolchain of one NDK installation.
type Toolchain struct {
	NDKRoot string
	HostTag string
}

// Root is <ndk>/toolchains/llvm/prebuilt/<host>.
func (tc Toolchain) Root() string {
	return filepath.Join(tc.NDKRoot, "toolchains", "llvm", "prebuilt", tc.HostTag)
}

func (tc Toolchain) sysroot() string {
	return filepath.Join(tc.Root(), "sysroot")
}

// SysrootLibDir is the per-arch, per-API system library directory.
func (tc Toolchain) SysrootLibDir(a Arch, api int) string {
	return filepath.Join(tc.sysroot(), "usr", "lib", a.Info().LibTriple, strconv.Itoa(api))
}

// IncludeDir is the arch-independent system header directory.
func (tc Toolchain) IncludeDir() string {
	return filepath.Join(tc.sysroot(), "usr", "include")
}

// ArchIncludeDir holds the arch-specific system headers.
func (tc Toolchain) ArchIncludeDir(a Arch) string {
	return filepath.Join(tc.IncludeDir(), a.Info().LibTriple)
}

// Clang is the API-level clang wrapper for a.
func (tc Toolchain) Clang(a Arch, api int) string {
	return filepath.Join(tc.Root(), "bin", a.Info().ClangTriple+strconv.Itoa(api)+"-clang")
}

// Target is a fully resolved architecture ready for compilation.
type Target struct {
	Arch           Arch
	API            int
	Clang          string
	LibDir         string
	IncludeDir     string
	ArchIncludeDir string
	// LibcPath is the cached libc description for (API, Arch), and Libc
	// its parsed contents.
	LibcPath string
	Libc     LibcFile
}

// Resolve computes the paths for a and checks that the toolchain actually
// provides them.
func (tc Toolchain) Resolve(a Arch, api int) (Target, error) {
	t := Target{
		Arch:           a,
		API:            api,
		Clang:          tc.Clang(a, api),
		LibDir:         tc.SysrootLibDir(a, api),
		IncludeDir:     tc.IncludeDir(),
		ArchIncludeDir: tc.ArchIncludeDir(a),
	}
	for _, dir := range []string{t.LibDir, t.IncludeDir, t.ArchIncludeDir} {
		if err := requireDir(dir); err != nil {
			return Target{}, err
		}
	}
	if _, err := os.Stat(t.Clang); err != nil {
		return Target{}, apkerr.Toolchain("resolve "+string(a), t.Clang, err)
	}
	return t, nil
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return apkerr.Toolchain("resolve ndk", dir, err)
	}
	if !info.IsDir() {
		return apkerr.Toolchain("resolve ndk", dir, os.ErrInvalid)
	}
	return nil
}
