package testutil

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// WriteZip creates a zip archive at path holding the given entries, written
// in name order.
func WriteZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	w := zip.NewWriter(f)
	for _, name := range names {
		method := zip.Deflate
		if name == "resources.arsc" {
			method = zip.Store
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		require.NoError(t, err)
		_, err = io.WriteString(fw, entries[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

// ReadZip returns the entries of the archive at path and their names in
// archive order.
func ReadZip(t *testing.T, path string) (map[string]string, []string) {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	entries := make(map[string]string, len(r.File))
	var order []string
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(data)
		order = append(order, f.Name)
	}
	return entries, order
}

// ZipMethods returns the compression method of each entry.
func ZipMethods(t *testing.T, path string) map[string]uint16 {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	methods := make(map[string]uint16, len(r.File))
	for _, f := range r.File {
		methods[f.Name] = f.Method
	}
	return methods
}
