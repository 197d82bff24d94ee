// Package deploy describes the stages that follow signing: alignment,
// installation on a connected device and launching the activity.
package deploy

import (
	"context"
	"strings"

	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/tools"
	"github.com/specialistvlad/nativeapk/internal/topologystore"
)

var (
	AlignID   = nodeid.New("apk", "align")
	InstallID = nodeid.New("device", "install")
	LaunchID  = nodeid.New("device", "launch")
)

// Options selects the stages to attach. Launch implies Install.
type Options struct {
	Align   bool
	Install bool
	Launch  bool
}

// AlignedPath is the zipalign output for apk.
func AlignedPath(apk string) string {
	return strings.TrimSuffix(apk, ".apk") + ".aligned.apk"
}

// Stages are the steps run against one signed archive.
type Stages struct {
	Toolchain config.Toolchain
	APK       string
	Package   string
}

// Align runs zipalign and returns the aligned archive's path.
func (s Stages) Align(ctx context.Context) (string, error) {
	out := AlignedPath(s.APK)
	if _, err := tools.Run(ctx, tools.ZipAlign(s.Toolchain.Tool("zipalign"), s.APK, out)); err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Info("Archive aligned.", "path", out)
	return out, nil
}

// Install pushes apk to the connected device.
func (s Stages) Install(ctx context.Context, apk string) error {
	_, err := tools.Run(ctx, tools.Install(s.Toolchain.Tool("adb"), apk))
	return err
}

// Launch starts the native activity.
func (s Stages) Launch(ctx context.Context) error {
	_, err := tools.Run(ctx, tools.Launch(s.Toolchain.Tool("adb"), s.Package))
	return err
}

// Attach chains the selected stages after `after` and returns the last
// node together with the path of the archive the chain produces. With no
// stage selected it returns after's node unchanged.
func Attach(ctx context.Context, topo topologystore.Store, after *node.Node, cfg *config.Model, opts Options) (*node.Node, string, error) {
	s := Stages{Toolchain: cfg.Toolchain, APK: cfg.Output.APK, Package: cfg.App.PackageName}
	last := after
	final := s.APK
	if opts.Launch {
		opts.Install = true
	}

	chain := func(n *node.Node) error {
		if err := topo.AddNode(ctx, n); err != nil {
			return err
		}
		if err := topo.AddDependency(ctx, last.ID, n.ID); err != nil {
			return err
		}
		last = n
		return nil
	}

	if opts.Align {
		final = AlignedPath(s.APK)
		err := chain(node.New(AlignID, node.KindAlign, func(ctx context.Context) (any, error) {
			return s.Align(ctx)
		}))
		if err != nil {
			return nil, "", err
		}
	}
	if opts.Install {
		installed := final
		err := chain(node.New(InstallID, node.KindInstall, func(ctx context.Context) (any, error) {
			return installed, s.Install(ctx, installed)
		}))
		if err != nil {
			return nil, "", err
		}
	}
	if opts.Launch {
		err := chain(node.New(LaunchID, node.KindLaunch, func(ctx context.Context) (any, error) {
			return s.Package, s.Launch(ctx)
		}))
		if err != nil {
			return nil, "", err
		}
	}
	return last, final, nil
}
