// Package symbols bundles the unstripped native libraries of a build into a
// tar.xz archive kept next to the APK for crash symbolication.
package symbols

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/checksum"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/ndk"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/topologystore"
)

// ID addresses the bundling node.
var ID = nodeid.New("apk", "symbols")

// IndexName is the entry listing "<blake3>  <entry>" for every library.
const IndexName = "BLAKE3SUMS"

// BundlePath is <apk>.symbols.tar.xz.
func BundlePath(apk string) string {
	return apk + ".symbols.tar.xz"
}

// Bundle writes libs to out as <abi>/<name> entries plus an index.
func Bundle(ctx context.Context, out string, libs []ndk.Library) error {
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return apkerr.IO("bundle symbols", out, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(out), "."+filepath.Base(out)+".*")
	if err != nil {
		return apkerr.IO("bundle symbols", out, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(ctx, tmp, libs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return apkerr.IO("bundle symbols", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return apkerr.IO("bundle symbols", out, err)
	}
	logger.Debug("Symbols bundled.", "path", out, "libraries", len(libs))
	return nil
}

func write(ctx context.Context, w io.Writer, libs []ndk.Library) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return apkerr.IO("bundle symbols", "", err)
	}
	tw := tar.NewWriter(xw)

	var index strings.Builder
	for _, lib := range libs {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := path.Join(lib.ABI, path.Base(lib.Entry))
		sum, err := addFile(tw, name, lib.Path)
		if err != nil {
			return err
		}
		fmt.Fprintf(&index, "%s  %s\n", sum, name)
	}

	data := []byte(index.String())
	if err := tw.WriteHeader(&tar.Header{Name: IndexName, Mode: 0o644, Size: int64(len(data))}); err != nil {
		return apkerr.IO("bundle symbols", IndexName, err)
	}
	if _, err := tw.Write(data); err != nil {
		return apkerr.IO("bundle symbols", IndexName, err)
	}
	if err := tw.Close(); err != nil {
		return apkerr.IO("bundle symbols", "", err)
	}
	if err := xw.Close(); err != nil {
		return apkerr.IO("bundle symbols", "", err)
	}
	return nil
}

func addFile(tw *tar.Writer, name, src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", apkerr.IO("bundle symbols", src, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", apkerr.IO("bundle symbols", src, err)
	}
	hdr := &tar.Header{Name: name, Mode: 0o755, Size: info.Size(), ModTime: info.ModTime()}
	if err := tw.WriteHeader(hdr); err != nil {
		return "", apkerr.IO("bundle symbols", src, err)
	}
	sum, err := checksum.Reader(io.TeeReader(f, tw))
	if err != nil {
		return "", apkerr.IO("bundle symbols", src, err)
	}
	return sum, nil
}

// Attach adds the bundling node to topo, depending on deps (the compile
// nodes of libs).
func Attach(ctx context.Context, topo topologystore.Store, apk string, libs []ndk.Library, deps ...nodeid.Address) (*node.Node, error) {
	out := BundlePath(apk)
	n := node.New(ID, node.KindSymbols, func(ctx context.Context) (any, error) {
		if err := Bundle(ctx, out, libs); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err := topo.AddNode(ctx, n); err != nil {
		return nil, err
	}
	for _, dep := range deps {
		if err := topo.AddDependency(ctx, dep, ID); err != nil {
			return nil, err
		}
	}
	return n, nil
}
