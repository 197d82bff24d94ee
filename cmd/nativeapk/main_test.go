package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nativeapk/internal/cli"
	"github.com/specialistvlad/nativeapk/internal/testutil"
)

func TestRun_Help(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"--help"}))
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "build")
}

func TestRun_Build(t *testing.T) {
	p := testutil.NewProject(t, []string{"aarch64", "arm", "x86_64", "x86"}, "")
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"build", "--config", p.ConfigPath, "--no-color", "--align"})
	require.NoError(t, err, out.String())

	entries, _ := testutil.ReadZip(t, strings.TrimSuffix(p.APK, ".apk")+".aligned.apk")
	for _, abi := range []string{"arm64-v8a", "armeabi", "x86_64", "x86"} {
		assert.Equal(t, "real", entries["lib/"+abi+"/libdemo.so"], abi)
	}
	assert.Contains(t, out.String(), "BUILD SUCCESSFUL")
}

func TestRun_ExitCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown flag", func(t *testing.T) {
		err := run(ctx, &bytes.Buffer{}, []string{"build", "--bogus"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	})

	t.Run("invalid configuration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nativeapk.yaml")
		require.NoError(t, os.WriteFile(path, []byte("targets: [aarch64]\n"), 0o644))
		err := run(ctx, &bytes.Buffer{}, []string{"build", "-c", path})
		require.Error(t, err)
		assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	})

	t.Run("missing NDK", func(t *testing.T) {
		p := testutil.NewProject(t, []string{"x86"}, "")
		require.NoError(t, os.RemoveAll(filepath.Join(p.Dir, "ndk")))
		err := run(ctx, &bytes.Buffer{}, []string{"build", "-c", p.ConfigPath})
		require.Error(t, err)
		assert.Equal(t, cli.ExitToolchain, cli.ExitCode(err))
	})

	t.Run("tool failure", func(t *testing.T) {
		p := testutil.NewProject(t, []string{"x86"}, "")
		testutil.FakeTool(t, p.Bin, "aapt", "exit 1")
		err := run(ctx, &bytes.Buffer{}, []string{"build", "-c", p.ConfigPath, "--retries=-1"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
	})
}
