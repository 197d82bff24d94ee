package ndk

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/nativeapk/internal/ctxlog"
)

// Prepare resolves every selected architecture, writes (or reuses) the
// libc description files in cacheDir and creates the compiler's output
// directories. Targets are returned in selection order. Any failure aborts
// the whole preparation.
func Prepare(ctx context.Context, tc Toolchain, sel Selection, api int, cacheDir string, c *Compiler) ([]Target, error) {
	logger := ctxlog.FromContext(ctx)
	if err := c.writeEmptySource(); err != nil {
		return nil, err
	}

	targets := make([]Target, len(sel))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range sel {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := tc.Resolve(a, api)
			if err != nil {
				return err
			}
			if t.LibcPath, err = EnsureLibcFile(cacheDir, t); err != nil {
				return err
			}
			if t.Libc, err = ParseLibcFile(t.LibcPath); err != nil {
				return err
			}
			if err := c.prepareDirs(t); err != nil {
				return err
			}
			logger.Debug("Prepared target.", "arch", string(a), "clang", t.Clang, "libc_file", t.LibcPath)
			targets[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return targets, nil
}
