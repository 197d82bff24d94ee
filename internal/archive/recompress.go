package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
)

// Recompress unpacks archive into a temporary directory and repacks it with
// maximum deflate compression. Entry order is kept and stored entries stay
// stored. The temporary directory is always removed.
func Recompress(ctx context.Context, archive string, locker *Locker) error {
	logger := ctxlog.FromContext(ctx)
	if locker == nil {
		locker = NewLocker()
	}
	unlock, err := locker.Lock(ctx, archive)
	if err != nil {
		return err
	}
	defer unlock()

	dir, err := os.MkdirTemp("", "nativeapk-recompress-*")
	if err != nil {
		return apkerr.IO("recompress", archive, err)
	}
	defer os.RemoveAll(dir)

	headers, err := unpack(archive, dir)
	if err != nil {
		return err
	}
	logger.Debug("Archive unpacked.", "archive", archive, "entries", len(headers))

	err = rewrite(archive, func(_ *zip.Reader, w *zip.Writer) error {
		w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, flate.BestCompression)
		})
		for _, hdr := range headers {
			if err := repackEntry(w, dir, hdr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Debug("Archive recompressed.", "archive", archive)
	return nil
}

func unpack(archive, dir string) ([]zip.FileHeader, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return nil, apkerr.IO("open archive", archive, err)
	}
	defer r.Close()

	headers := make([]zip.FileHeader, 0, len(r.File))
	for _, f := range r.File {
		target, err := entryPath(dir, f.Name)
		if err != nil {
			return nil, apkerr.IO("recompress", archive, err)
		}
		headers = append(headers, f.FileHeader)
		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, apkerr.IO("recompress", target, err)
			}
			continue
		}
		if err := extract(f, target); err != nil {
			return nil, apkerr.IO("recompress", target, err)
		}
	}
	return headers, nil
}

func extract(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func repackEntry(w *zip.Writer, dir string, hdr zip.FileHeader) error {
	if hdr.Method != zip.Store {
		hdr.Method = zip.Deflate
	}
	fw, err := w.CreateHeader(&hdr)
	if err != nil {
		return err
	}
	if strings.HasSuffix(hdr.Name, "/") {
		return nil
	}
	path, err := entryPath(dir, hdr.Name)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(fw, f)
	return err
}

// entryPath maps an entry name into dir, rejecting names that escape it.
func entryPath(dir, name string) (string, error) {
	p := filepath.Join(dir, filepath.FromSlash(name))
	if p != dir && !strings.HasPrefix(p, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes the archive root", name)
	}
	return p, nil
}
