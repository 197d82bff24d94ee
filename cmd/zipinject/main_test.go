package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/nativeapk/internal/cli"
	"github.com/specialistvlad/nativeapk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Usage(t *testing.T) {
	err := run(&bytes.Buffer{}, []string{"only-one"})
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_Injects(t *testing.T) {
	dir := t.TempDir()
	apk := filepath.Join(dir, "demo.apk")
	testutil.WriteZip(t, apk, map[string]string{"AndroidManifest.xml": "<manifest/>"})
	src := filepath.Join(dir, "libdemo.so")
	require.NoError(t, os.WriteFile(src, []byte("ELF"), 0o644))

	require.NoError(t, run(&bytes.Buffer{}, []string{apk, src, "lib/x86/libdemo.so"}))

	entries, _ := testutil.ReadZip(t, apk)
	assert.Equal(t, "ELF", entries["lib/x86/libdemo.so"])
	assert.Equal(t, "<manifest/>", entries["AndroidManifest.xml"])
}

func TestRun_MissingArchive(t *testing.T) {
	dir := t.TempDir()
	err := run(&bytes.Buffer{}, []string{filepath.Join(dir, "none.apk"), filepath.Join(dir, "x.so"), "lib/x86/x.so"})
	require.Error(t, err)
	var exitErr *cli.ExitError
	assert.False(t, errors.As(err, &exitErr))
}
