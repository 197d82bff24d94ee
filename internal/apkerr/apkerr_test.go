package apkerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	testCases := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "config",
			err:      Configf("app", "app_name %q must match [a-z_]+", "Demo"),
			expected: `config error in app: app_name "Demo" must match [a-z_]+`,
		},
		{
			name:     "toolchain with path",
			err:      Toolchain("ndk", "/opt/ndk", fs.ErrNotExist),
			expected: "toolchain error in ndk (/opt/ndk): file does not exist",
		},
		{
			name:     "process with output",
			err:      Process("jarsigner", 1, "bad password\n", errors.New("exit status 1")),
			expected: "process error in jarsigner: exit status 1: exit status 1\nbad password",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("node apk.base: %w", IO("write", "/tmp/x", fs.ErrPermission))

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindIO, kind)
	assert.ErrorIs(t, wrapped, fs.ErrPermission)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(IO("rename", "a.apk", fs.ErrExist)))
	assert.False(t, IsTransient(Process("aapt", 1, "", nil)))
	assert.False(t, IsTransient(Config("app", errors.New("x"))))
	assert.False(t, IsTransient(nil))
	assert.Equal(t, "unknown", Kind(0).String())
}
