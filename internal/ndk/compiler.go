package ndk

import (
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
)

// Library is one native library produced for one architecture.
type Library struct {
	Arch Arch
	ABI  string
	// Path is the file on disk.
	Path string
	// Entry is the in-archive name, lib/<abi>/<name>.
	Entry string
}

// Compiler builds the per-arch compile and placeholder commands.
type Compiler struct {
	// GoTool is the go command used for c-shared builds.
	GoTool string
	// Source is the Go package compiled into the library.
	Source string
	// OutDir receives lib/<abi>/ and placeholder/<abi>/.
	OutDir string
	// LibName is the real library's file name, lib<app>.so.
	LibName string
	// PlaceholderName is the placeholder file name; empty means LibName.
	PlaceholderName string
}

func (c *Compiler) placeholderName() string {
	if c.PlaceholderName != "" {
		return c.PlaceholderName
	}
	return c.LibName
}

// EmptySource is the C file every placeholder is linked from.
func (c *Compiler) EmptySource() string {
	return filepath.Join(c.OutDir, "placeholder", "empty.c")
}

// LibraryFor describes the real library built for t.
func (c *Compiler) LibraryFor(t Target) Library {
	return c.describe(t, "lib", c.LibName)
}

// PlaceholderFor describes the placeholder built for t. Its entry shares the
// real library's lib/<abi>/ directory.
func (c *Compiler) PlaceholderFor(t Target) Library {
	return c.describe(t, "placeholder", c.placeholderName())
}

func (c *Compiler) describe(t Target, dir, name string) Library {
	abi := t.Arch.Info().ABI
	return Library{
		Arch:  t.Arch,
		ABI:   abi,
		Path:  filepath.Join(c.OutDir, dir, abi, name),
		Entry: path.Join("lib", abi, name),
	}
}

// Library returns LibraryFor(t) and the deferred
// `go build -buildmode=c-shared` command producing it.
func (c *Compiler) Library(t Target) (Library, *exec.Cmd) {
	lib := c.LibraryFor(t)
	cmd := exec.Command(c.GoTool, "build", "-buildmode=c-shared", "-o", lib.Path, c.Source)
	cmd.Env = append(os.Environ(), BuildEnv(t)...)
	return lib, cmd
}

// Placeholder returns PlaceholderFor(t) and the deferred clang command
// linking it from the empty source.
func (c *Compiler) Placeholder(t Target) (Library, *exec.Cmd) {
	lib := c.PlaceholderFor(t)
	cmd := exec.Command(t.Clang, "-shared", "-nostdlib", "-o", lib.Path, c.EmptySource())
	return lib, cmd
}

// BuildEnv is the cross-compilation environment for t. Include and library
// flags come from the cached libc description.
func BuildEnv(t Target) []string {
	info := t.Arch.Info()
	env := []string{
		"GOOS=android",
		"GOARCH=" + info.GOARCH,
	}
	if info.GOARM != "" {
		env = append(env, "GOARM="+info.GOARM)
	}
	return append(env,
		"CGO_ENABLED=1",
		"CC="+t.Clang,
		"CGO_CFLAGS="+strings.Join([]string{"-DANDROID", "-I" + t.Libc.IncludeDir, "-I" + t.Libc.SysIncludeDir}, " "),
		"CGO_LDFLAGS="+strings.Join([]string{"-L" + t.Libc.CRTDir, "-lGLESv2", "-lEGL", "-landroid", "-llog"}, " "),
	)
}

// prepareDirs creates the output directories of t.
func (c *Compiler) prepareDirs(t Target) error {
	abi := t.Arch.Info().ABI
	for _, dir := range []string{
		filepath.Join(c.OutDir, "lib", abi),
		filepath.Join(c.OutDir, "placeholder", abi),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apkerr.IO("prepare "+string(t.Arch), dir, err)
		}
	}
	return nil
}

func (c *Compiler) writeEmptySource() error {
	src := c.EmptySource()
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		return apkerr.IO("write placeholder source", src, err)
	}
	if err := os.WriteFile(src, nil, 0o644); err != nil {
		return apkerr.IO("write placeholder source", src, err)
	}
	return nil
}
