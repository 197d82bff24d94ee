package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/archive"
	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/graph"
	"github.com/specialistvlad/nativeapk/internal/inmemorystore"
	"github.com/specialistvlad/nativeapk/internal/inmemorytopology"
	"github.com/specialistvlad/nativeapk/internal/ndk"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/nodestore"
	"github.com/specialistvlad/nativeapk/internal/resgen"
	"github.com/specialistvlad/nativeapk/internal/tools"
	"github.com/specialistvlad/nativeapk/internal/topologystore"
)

// Well-known node addresses.
var (
	ResourcesID  = nodeid.MustParse("apk.resources")
	BaseID       = nodeid.MustParse("apk.base")
	RecompressID = nodeid.MustParse("apk.recompress")
	SignID       = nodeid.MustParse("apk.sign")
)

// CompileID addresses the real library compilation of arch.
func CompileID(arch ndk.Arch) nodeid.Address {
	return nodeid.New("lib", string(arch), "compile")
}

// PlaceholderID addresses the placeholder build of arch.
func PlaceholderID(arch ndk.Arch) nodeid.Address {
	return nodeid.New("lib", string(arch), "placeholder")
}

// InjectPlaceholderID addresses the placeholder injection of arch.
func InjectPlaceholderID(arch ndk.Arch) nodeid.Address {
	return nodeid.New("inject", string(arch), "placeholder")
}

// InjectLibraryID addresses the real library injection of arch.
func InjectLibraryID(arch ndk.Arch) nodeid.Address {
	return nodeid.New("inject", string(arch), "library")
}

// Deps are the collaborators of Build.
type Deps struct {
	Config *config.Model
	// Mutator injects libraries into the archive. Nil selects a HostTool
	// when the toolchain names a zip injection helper and the in-process
	// ZipMutator otherwise.
	Mutator archive.Mutator
	// Locker serialises archive writes. Nil creates a fresh one.
	Locker *archive.Locker
	// State backs the returned graph's node state. Nil means in-memory.
	State nodestore.Store
	// Recompress adds apk.recompress before signing.
	Recompress bool
}

// Result describes a constructed pipeline.
type Result struct {
	// First is the resource node, the only root of the graph.
	First *node.Node
	// Terminal is the signing node; later stages attach after it.
	Terminal *node.Node
	// Libraries are the real libraries, one per enabled arch, in selection
	// order.
	Libraries    []ndk.Library
	Placeholders []ndk.Library
	Graph        *graph.Manager
}

// Build writes the generated resources and describes the rest of the
// assembly as a graph in topo (a fresh in-memory store when nil). Any
// construction error is returned before a single node is added. Unset
// defaults in deps.Config are filled in before it is validated.
func Build(ctx context.Context, topo topologystore.Store, deps Deps) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := deps.Config
	if cfg == nil {
		return nil, apkerr.Configf("build pipeline", "no configuration")
	}
	cfg.ApplyDefaults()
	if err := config.Validate(cfg); err != nil {
		return nil, apkerr.Config("build pipeline", err)
	}
	if topo == nil {
		topo = inmemorytopology.New()
	}
	if deps.State == nil {
		deps.State = inmemorystore.New()
	}
	if deps.Locker == nil {
		deps.Locker = archive.NewLocker()
	}
	if deps.Mutator == nil {
		deps.Mutator = defaultMutator(cfg, deps.Locker)
	}

	sel, err := ndk.ParseSelection(cfg.Targets)
	if err != nil {
		return nil, err
	}

	b := &builder{
		cfg:    cfg,
		deps:   deps,
		topo:   topo,
		genDir: filepath.Join(cfg.Output.Dir, "gen"),
		apk:    cfg.Output.APK,
		tc:     cfg.Toolchain,
	}
	b.compiler = &ndk.Compiler{
		GoTool:          cfg.Toolchain.Tool("go"),
		Source:          cfg.App.Source,
		OutDir:          cfg.Output.Dir,
		LibName:         cfg.App.LibraryName(),
		PlaceholderName: cfg.Output.PlaceholderName,
	}

	logger.Debug("Generating resources.", "dir", b.genDir)
	if b.manifest, err = resgen.WriteManifest(b.genDir, cfg.App); err != nil {
		return nil, err
	}
	if b.strings, err = resgen.WriteStrings(b.genDir, cfg.App); err != nil {
		return nil, err
	}

	logger.Debug("Preparing targets.", "targets", cfg.Targets, "api", cfg.App.APILevel)
	ntc := ndk.Toolchain{NDKRoot: cfg.Toolchain.NDKRoot, HostTag: cfg.Toolchain.HostTag}
	if b.targets, err = ndk.Prepare(ctx, ntc, sel, cfg.App.APILevel, cfg.Toolchain.CacheDir, b.compiler); err != nil {
		return nil, err
	}

	res, err := b.assemble(ctx)
	if err != nil {
		return nil, err
	}
	if err := topologystore.DetectCycles(ctx, topo); err != nil {
		return nil, fmt.Errorf("pipeline graph is invalid: %w", err)
	}
	res.Graph = graph.New(topo, deps.State)
	logger.Debug("Pipeline constructed.", "nodes", len(topo.AllNodes(ctx)), "libraries", len(res.Libraries))
	return res, nil
}

func defaultMutator(cfg *config.Model, locker *archive.Locker) archive.Mutator {
	if cfg.Toolchain.ZipInjectTool != "" {
		return archive.NewHostTool(cfg.Toolchain.ZipInjectTool, locker)
	}
	return archive.NewZipMutator(locker)
}

type builder struct {
	cfg      *config.Model
	deps     Deps
	topo     topologystore.Store
	tc       config.Toolchain
	compiler *ndk.Compiler
	targets  []ndk.Target

	genDir   string
	manifest string
	strings  string
	apk      string
}

func (b *builder) add(ctx context.Context, n *node.Node, deps ...nodeid.Address) (*node.Node, error) {
	if err := b.topo.AddNode(ctx, n); err != nil {
		return nil, err
	}
	for _, dep := range deps {
		if err := b.topo.AddDependency(ctx, dep, n.ID); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (b *builder) assemble(ctx context.Context) (*Result, error) {
	res := &Result{}
	var err error

	if res.First, err = b.add(ctx, node.New(ResourcesID, node.KindResources, b.checkResources)); err != nil {
		return nil, err
	}
	if _, err = b.add(ctx, node.New(BaseID, node.KindBaseArchive, b.packageBase), ResourcesID); err != nil {
		return nil, err
	}

	var injections []nodeid.Address
	for _, t := range b.targets {
		lib := b.compiler.LibraryFor(t)
		placeholder := b.compiler.PlaceholderFor(t)
		res.Libraries = append(res.Libraries, lib)
		res.Placeholders = append(res.Placeholders, placeholder)

		arch := string(t.Arch)
		steps := []struct {
			n    *node.Node
			deps []nodeid.Address
		}{
			{
				node.NewForArch(CompileID(t.Arch), node.KindCompile, arch, b.compileLibrary(t)),
				[]nodeid.Address{ResourcesID},
			},
			{
				node.NewForArch(PlaceholderID(t.Arch), node.KindPlaceholder, arch, b.compilePlaceholder(t)),
				[]nodeid.Address{ResourcesID},
			},
			{
				node.NewForArch(InjectPlaceholderID(t.Arch), node.KindInjectPlaceholder, arch, b.inject(placeholder)),
				[]nodeid.Address{BaseID, CompileID(t.Arch), PlaceholderID(t.Arch)},
			},
			{
				node.NewForArch(InjectLibraryID(t.Arch), node.KindInjectLibrary, arch, b.inject(lib)),
				[]nodeid.Address{BaseID, CompileID(t.Arch), InjectPlaceholderID(t.Arch)},
			},
		}
		for _, s := range steps {
			if _, err := b.add(ctx, s.n, s.deps...); err != nil {
				return nil, err
			}
		}
		injections = append(injections, InjectPlaceholderID(t.Arch), InjectLibraryID(t.Arch))
	}

	signDeps := injections
	if b.deps.Recompress {
		if _, err := b.add(ctx, node.New(RecompressID, node.KindRecompress, b.recompress), injections...); err != nil {
			return nil, err
		}
		signDeps = []nodeid.Address{RecompressID}
	}
	if res.Terminal, err = b.add(ctx, node.New(SignID, node.KindSign, b.sign), signDeps...); err != nil {
		return nil, err
	}
	return res, nil
}

func (b *builder) checkResources(ctx context.Context) (any, error) {
	for _, p := range []string{b.manifest, b.strings} {
		if _, err := os.Stat(p); err != nil {
			return nil, apkerr.IO("check resources", p, err)
		}
	}
	return b.manifest, nil
}

func (b *builder) packageBase(ctx context.Context) (any, error) {
	if err := os.Remove(b.apk); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apkerr.IO("remove old archive", b.apk, err)
	}
	if err := os.MkdirAll(filepath.Dir(b.apk), 0o755); err != nil {
		return nil, apkerr.IO("package base archive", b.apk, err)
	}

	resDirs := []string{filepath.Join(b.genDir, "res")}
	if b.cfg.App.ResourceDir != "" {
		resDirs = append(resDirs, b.cfg.App.ResourceDir)
	}
	cmd := tools.Package(b.tc.Tool("aapt"), tools.PackageArgs{
		APK:          b.apk,
		PlatformJar:  b.tc.PlatformJar(b.cfg.App.APILevel),
		Manifest:     b.manifest,
		ResourceDirs: resDirs,
		Assets:       b.cfg.App.Assets,
		TargetSDK:    b.cfg.App.APILevel,
	})
	if _, err := tools.Run(ctx, cmd); err != nil {
		return nil, err
	}
	return b.apk, nil
}

func (b *builder) compileLibrary(t ndk.Target) node.Action {
	return func(ctx context.Context) (any, error) {
		lib, cmd := b.compiler.Library(t)
		if _, err := tools.Run(ctx, cmd); err != nil {
			return nil, err
		}
		return lib, nil
	}
}

func (b *builder) compilePlaceholder(t ndk.Target) node.Action {
	return func(ctx context.Context) (any, error) {
		lib, cmd := b.compiler.Placeholder(t)
		if _, err := tools.Run(ctx, cmd); err != nil {
			return nil, err
		}
		return lib, nil
	}
}

func (b *builder) inject(lib ndk.Library) node.Action {
	return func(ctx context.Context) (any, error) {
		if err := b.deps.Mutator.Inject(ctx, b.apk, lib.Path, lib.Entry); err != nil {
			return nil, err
		}
		return lib.Entry, nil
	}
}

func (b *builder) recompress(ctx context.Context) (any, error) {
	if err := archive.Recompress(ctx, b.apk, b.deps.Locker); err != nil {
		return nil, err
	}
	return b.apk, nil
}

func (b *builder) sign(ctx context.Context) (any, error) {
	ks := b.tc.KeyStore
	unlock, err := b.deps.Locker.Lock(ctx, b.apk)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cmd := tools.Sign(b.tc.Tool("jarsigner"), ks.File, ks.Password, b.apk, ks.Alias)
	if _, err := tools.Run(ctx, cmd); err != nil {
		return nil, err
	}
	return b.apk, nil
}
