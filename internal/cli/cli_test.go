package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/testutil"
)

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "explicit", err: &ExitError{Code: 7, Message: "x"}, want: 7},
		{name: "config", err: apkerr.Configf("load", "bad"), want: ExitUsage},
		{name: "toolchain", err: apkerr.Toolchain("resolve", "/ndk", os.ErrNotExist), want: ExitToolchain},
		{name: "wrapped toolchain", err: fmt.Errorf("execution failed for lib.x86.compile: %w", apkerr.Toolchain("go", "go", os.ErrNotExist)), want: ExitToolchain},
		{name: "process", err: apkerr.Process("aapt package", 1, "", nil), want: ExitFailure},
		{name: "plain", err: errors.New("boom"), want: ExitFailure},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	err := Execute(context.Background(), out, args)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nativeapk dev")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nativeapk.hcl")

	out, err := execute(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)

	_, err = execute(t, "init", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))

	_, err = execute(t, "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestGraph(t *testing.T) {
	p := testutil.NewProject(t, []string{"x86"}, "")

	out, err := execute(t, "graph", "--config", p.ConfigPath, "--no-color", "--align", "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "apk.resources", lines[0])
	assert.Contains(t, lines, "inject.x86.library <- apk.base, lib.x86.compile, inject.x86.placeholder")
	assert.Contains(t, lines, "inject.x86.placeholder <- apk.base, lib.x86.compile, lib.x86.placeholder")
	assert.Equal(t, "apk.align <- apk.sign", lines[len(lines)-1])
}

func TestGraph_NodeFilter(t *testing.T) {
	p := testutil.NewProject(t, []string{"x86", "arm"}, "")

	out, err := execute(t, "graph", "--config", p.ConfigPath, "--no-color", "--log-level", "error", "--node", "inject.x86")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i], _, _ = strings.Cut(line, " <- ")
	}
	assert.Equal(t, "apk.resources", ids[0])
	assert.ElementsMatch(t, []string{
		"apk.resources",
		"apk.base",
		"lib.x86.compile",
		"lib.x86.placeholder",
		"inject.x86.placeholder",
		"inject.x86.library",
	}, ids)
	assert.Contains(t, lines, "inject.x86.library <- apk.base, lib.x86.compile, inject.x86.placeholder")
}

func TestGraph_NodeFilterErrors(t *testing.T) {
	p := testutil.NewProject(t, []string{"x86"}, "")

	testCases := []struct {
		name   string
		filter string
		errMsg string
	}{
		{name: "malformed", filter: "lib..x86", errMsg: "empty segment"},
		{name: "no match", filter: "lib.mips", errMsg: `no node matches "lib.mips"`},
		{name: "segment is not a string prefix", filter: "inject.x8", errMsg: `no node matches "inject.x8"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, "graph", "--config", p.ConfigPath, "--log-level", "error", "--node", tc.filter)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
			assert.Equal(t, ExitUsage, ExitCode(err))
		})
	}
}

func TestRetryBudget(t *testing.T) {
	testCases := []struct {
		flag int
		want int
	}{
		{flag: 0, want: -1},
		{flag: -3, want: -1},
		{flag: 1, want: 1},
		{flag: 5, want: 5},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.flag), func(t *testing.T) {
			got := retryBudget(tc.flag)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, executor.Options{Retries: got}.WithDefaults().Retries)
		})
	}
}

func TestInvalidFlags(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"build", "--nope"}},
		{name: "bad log level", args: []string{"sign", "--log-level", "loud"}},
		{name: "bad log format", args: []string{"sign", "--log-format", "xml"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, ExitCode(err))
		})
	}
}
