package ndk

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
)

// LibcFile is the libc description consumed by the C toolchain: include
// directories and the CRT/library directory of one (API, arch) pair.
type LibcFile struct {
	IncludeDir     string
	SysIncludeDir  string
	CRTDir         string
	MSVCLibDir     string
	Kernel32LibDir string
}

var libcKeys = []string{"include_dir", "sys_include_dir", "crt_dir", "msvc_lib_dir", "kernel32_lib_dir"}

// NewLibcFile describes t.
func NewLibcFile(t Target) LibcFile {
	return LibcFile{IncludeDir: t.IncludeDir, SysIncludeDir: t.ArchIncludeDir, CRTDir: t.LibDir}
}

// Bytes renders the five fixed key=value lines.
func (l LibcFile) Bytes() []byte {
	values := []string{l.IncludeDir, l.SysIncludeDir, l.CRTDir, l.MSVCLibDir, l.Kernel32LibDir}
	var b bytes.Buffer
	for i, k := range libcKeys {
		fmt.Fprintf(&b, "%s=%s\n", k, values[i])
	}
	return b.Bytes()
}

// ParseLibcFile reads a libc description.
func ParseLibcFile(path string) (LibcFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return LibcFile{}, apkerr.IO("read libc file", path, err)
	}
	defer f.Close()

	values := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return LibcFile{}, apkerr.Toolchain("parse libc file", path, fmt.Errorf("malformed line %q", line))
		}
		values[k] = v
	}
	if err := sc.Err(); err != nil {
		return LibcFile{}, apkerr.IO("read libc file", path, err)
	}
	return LibcFile{
		IncludeDir:     values["include_dir"],
		SysIncludeDir:  values["sys_include_dir"],
		CRTDir:         values["crt_dir"],
		MSVCLibDir:     values["msvc_lib_dir"],
		Kernel32LibDir: values["kernel32_lib_dir"],
	}, nil
}

// LibcFileName is the cache file name for (api, a).
func LibcFileName(api int, a Arch) string {
	return fmt.Sprintf("android-%d-%s.conf", api, a.Info().ABI)
}

// EnsureLibcFile writes the libc description of t into cacheDir unless a
// file for the same (API, arch) already exists, and returns its path.
// Existing files are reused as-is.
func EnsureLibcFile(cacheDir string, t Target) (string, error) {
	path := filepath.Join(cacheDir, LibcFileName(t.API, t.Arch))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", apkerr.IO("write libc file", cacheDir, err)
	}

	tmp, err := os.CreateTemp(cacheDir, ".libc-*")
	if err != nil {
		return "", apkerr.IO("write libc file", cacheDir, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(NewLibcFile(t).Bytes()); err != nil {
		tmp.Close()
		return "", apkerr.IO("write libc file", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", apkerr.IO("write libc file", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", apkerr.IO("write libc file", path, err)
	}
	return path, nil
}
