package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nativeapk/internal/ndk"
)

// FakeNDK lays out a minimal NDK under root for the given arches and API
// level. Each clang wrapper is a fake tool that writes "so" to its -o
// argument; invocations are logged to <root>/bin/calls.log via FakeTool.
func FakeNDK(t *testing.T, root, hostTag string, api int, arches ...ndk.Arch) ndk.Toolchain {
	t.Helper()
	tc := ndk.Toolchain{NDKRoot: root, HostTag: hostTag}
	require.NoError(t, os.MkdirAll(tc.IncludeDir(), 0o755))
	for _, a := range arches {
		require.NoError(t, os.MkdirAll(tc.SysrootLibDir(a, api), 0o755))
		require.NoError(t, os.MkdirAll(tc.ArchIncludeDir(a), 0o755))
		clang := tc.Clang(a, api)
		FakeTool(t, filepath.Dir(clang), filepath.Base(clang), OutputFlag+"\nprintf so > \"$out\"")
	}
	return tc
}
