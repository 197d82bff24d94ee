package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
)

// ZipMutator rewrites the archive in-process. The new archive is written to
// a sibling temporary file and renamed over the original, so a failed
// injection leaves the original untouched.
type ZipMutator struct {
	Locker *Locker
}

var _ Mutator = (*ZipMutator)(nil)

// NewZipMutator creates an in-process mutator sharing locker.
func NewZipMutator(locker *Locker) *ZipMutator {
	if locker == nil {
		locker = NewLocker()
	}
	return &ZipMutator{Locker: locker}
}

func (m *ZipMutator) Inject(ctx context.Context, archive, source, entry string) error {
	logger := ctxlog.FromContext(ctx)

	unlock, err := m.Locker.Lock(ctx, archive)
	if err != nil {
		return err
	}
	defer unlock()

	src, err := os.Open(source)
	if err != nil {
		return apkerr.IO("inject", source, err)
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		return apkerr.IO("inject", source, err)
	}

	err = rewrite(archive, func(r *zip.Reader, w *zip.Writer) error {
		for _, f := range r.File {
			if f.Name == entry {
				logger.Debug("Replacing existing archive entry.", "entry", entry)
				continue
			}
			if err := copyEntry(w, f); err != nil {
				return err
			}
		}
		hdr := &zip.FileHeader{Name: entry, Method: zip.Deflate, Modified: info.ModTime()}
		hdr.SetMode(0o644)
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			return err
		}
		_, err = io.Copy(fw, src)
		return err
	})
	if err != nil {
		return err
	}

	logger.Debug("Injected archive entry.", "archive", archive, "entry", entry, "size", info.Size())
	return nil
}

// copyEntry re-encodes f into w, keeping its header and compression method.
func copyEntry(w *zip.Writer, f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("reading entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	hdr := f.FileHeader
	fw, err := w.CreateHeader(&hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, rc)
	return err
}

// rewrite streams archive through fn into a temporary file and renames it
// over archive on success.
func rewrite(archive string, fn func(r *zip.Reader, w *zip.Writer) error) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return apkerr.IO("open archive", archive, err)
	}
	defer r.Close()

	tmp, err := os.CreateTemp(filepath.Dir(archive), "."+filepath.Base(archive)+".*")
	if err != nil {
		return apkerr.IO("rewrite archive", archive, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := zip.NewWriter(tmp)
	if err := fn(&r.Reader, w); err != nil {
		return apkerr.IO("rewrite archive", archive, err)
	}
	if err := w.Close(); err != nil {
		return apkerr.IO("rewrite archive", archive, err)
	}
	if err := tmp.Close(); err != nil {
		return apkerr.IO("rewrite archive", archive, err)
	}
	if err := os.Rename(tmpName, archive); err != nil {
		return apkerr.IO("rewrite archive", archive, err)
	}
	committed = true
	return nil
}
