package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/inmemorytopology"
	"github.com/specialistvlad/nativeapk/internal/localexecutor"
	"github.com/specialistvlad/nativeapk/internal/ndk"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/scheduler"
	"github.com/specialistvlad/nativeapk/internal/testutil"
	"github.com/specialistvlad/nativeapk/internal/topologystore"
)

const apkFlag = `apk=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-F" ]; then apk="$a"; fi
  prev="$a"
done`

type fixture struct {
	cfg *config.Model
	bin string
}

// newFixture lays out a fake SDK and NDK providing every arch, plus fake
// aapt, go and jarsigner binaries.
func newFixture(t *testing.T, targets ...string) *fixture {
	t.Helper()
	root := t.TempDir()
	bin := filepath.Join(root, "bin")

	base := filepath.Join(root, "base.zip")
	testutil.WriteZip(t, base, map[string]string{
		"AndroidManifest.xml": "<manifest/>",
		"resources.arsc":      "arsc",
	})

	tc := testutil.FakeNDK(t, filepath.Join(root, "ndk"), config.DefaultHostTag, 21,
		ndk.ArchAArch64, ndk.ArchARM, ndk.ArchX86_64, ndk.ArchX86)

	cfg := &config.Model{
		Toolchain: config.Toolchain{
			SDKRoot:           filepath.Join(root, "sdk"),
			NDKRoot:           tc.NDKRoot,
			BuildToolsVersion: "34.0.0",
			Tools: map[string]string{
				"aapt":      testutil.FakeTool(t, bin, "aapt", apkFlag+"\ncp \""+base+"\" \"$apk\""),
				"go":        testutil.FakeTool(t, bin, "go", testutil.OutputFlag+"\nprintf real > \"$out\""),
				"jarsigner": testutil.FakeTool(t, bin, "jarsigner", ""),
			},
			KeyStore: &config.KeyStore{File: "debug.keystore", Alias: "androiddebugkey", Password: "android"},
		},
		App: config.App{
			DisplayName: "Demo",
			AppName:     "demo",
			PackageName: "org.example.demo",
			APILevel:    21,
			Source:      "./app",
			Permissions: []string{"android.permission.INTERNET"},
		},
		Targets: targets,
		Output:  config.Output{Dir: filepath.Join(root, "out")},
	}
	cfg.ApplyDefaults()
	return &fixture{cfg: cfg, bin: bin}
}

func ids(nodes []*node.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID.String()
	}
	return out
}

// reaches reports whether a dependency path leads from `from` to `to`.
func reaches(ctx context.Context, t *testing.T, topo topologystore.Store, from, to nodeid.Address) bool {
	t.Helper()
	seen := map[string]bool{}
	queue := []nodeid.Address{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Equal(&to) {
			return true
		}
		if seen[cur.String()] {
			continue
		}
		seen[cur.String()] = true
		next, err := topo.DependentsOf(ctx, cur)
		require.NoError(t, err)
		queue = append(queue, next...)
	}
	return false
}

func execute(ctx context.Context, t *testing.T, res *Result) error {
	t.Helper()
	sch, err := scheduler.New(ctx, res.Graph)
	require.NoError(t, err)
	return localexecutor.New(sch, res.Graph, executor.Options{Workers: 4, Retries: -1}).Execute(ctx)
}

func TestBuild_SingleTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "aarch64")
	topo := inmemorytopology.New()

	res, err := Build(ctx, topo, Deps{Config: f.cfg})
	require.NoError(t, err)

	require.Len(t, res.Libraries, 1)
	assert.Equal(t, "lib/arm64-v8a/libdemo.so", res.Libraries[0].Entry)
	assert.Equal(t, "apk.resources", res.First.ID.String())
	assert.Equal(t, "apk.sign", res.Terminal.ID.String())

	assert.ElementsMatch(t, []string{
		"apk.resources", "apk.base",
		"lib.aarch64.compile", "lib.aarch64.placeholder",
		"inject.aarch64.placeholder", "inject.aarch64.library",
		"apk.sign",
	}, ids(topo.AllNodes(ctx)))

	deps, err := res.Graph.DependenciesOf(ctx, SignID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"inject.aarch64.placeholder", "inject.aarch64.library"}, ids(deps))

	sch, err := scheduler.New(ctx, res.Graph)
	require.NoError(t, err)
	assert.Equal(t, []string{"apk.resources"}, ids(sch.Roots()))

	order, err := res.Graph.Order(ctx)
	require.NoError(t, err)
	assert.Equal(t, "apk.sign", order[len(order)-1].ID.String())

	t.Run("resources are written during construction", func(t *testing.T) {
		assert.FileExists(t, filepath.Join(f.cfg.Output.Dir, "gen", "AndroidManifest.xml"))
		assert.FileExists(t, filepath.Join(f.cfg.Output.Dir, "gen", "res", "values", "strings.xml"))
		assert.Empty(t, testutil.Calls(t, f.bin), "no external tool runs before execution")
		assert.NoFileExists(t, f.cfg.Output.APK)
	})
}

func TestBuild_TargetSubsets(t *testing.T) {
	ctx := context.Background()
	all := ndk.Names()

	for mask := 1; mask < 1<<len(all); mask++ {
		var targets []string
		for i, name := range all {
			if mask&(1<<i) != 0 {
				targets = append(targets, name)
			}
		}

		t.Run(strings.Join(targets, "+"), func(t *testing.T) {
			f := newFixture(t, targets...)
			topo := inmemorytopology.New()
			res, err := Build(ctx, topo, Deps{Config: f.cfg})
			require.NoError(t, err)

			require.Len(t, res.Libraries, len(targets))
			for i, lib := range res.Libraries {
				assert.Equal(t, ndk.Arch(targets[i]), lib.Arch, "libraries follow selection order")
			}

			var injections int
			for _, n := range topo.AllNodes(ctx) {
				if n.Kind == node.KindInjectLibrary || n.Kind == node.KindInjectPlaceholder {
					injections++
				}
			}
			assert.Equal(t, 2*len(targets), injections)

			for _, name := range targets {
				a := ndk.Arch(name)
				for _, inj := range []nodeid.Address{InjectPlaceholderID(a), InjectLibraryID(a)} {
					assert.True(t, reaches(ctx, t, topo, BaseID, inj), "base -> %s", inj.String())
					assert.True(t, reaches(ctx, t, topo, CompileID(a), inj), "compile -> %s", inj.String())
					assert.True(t, reaches(ctx, t, topo, inj, SignID), "%s -> sign", inj.String())
				}
				assert.True(t, reaches(ctx, t, topo, InjectPlaceholderID(a), InjectLibraryID(a)))
			}
		})
	}
}

func TestBuild_ConstructionErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing NDK", func(t *testing.T) {
		f := newFixture(t, "aarch64")
		f.cfg.Toolchain.NDKRoot = filepath.Join(t.TempDir(), "missing")
		topo := inmemorytopology.New()

		res, err := Build(ctx, topo, Deps{Config: f.cfg})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.Empty(t, topo.AllNodes(ctx))
		kind, _ := apkerr.KindOf(err)
		assert.Equal(t, apkerr.KindToolchain, kind)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		f := newFixture(t, "mips")
		topo := inmemorytopology.New()

		_, err := Build(ctx, topo, Deps{Config: f.cfg})
		require.Error(t, err)
		assert.Empty(t, topo.AllNodes(ctx))
		kind, _ := apkerr.KindOf(err)
		assert.Equal(t, apkerr.KindConfig, kind)
	})

	t.Run("no configuration", func(t *testing.T) {
		_, err := Build(ctx, nil, Deps{})
		require.Error(t, err)
	})
}

func TestBuild_FillsDefaultsBeforeValidating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "x86_64")
	f.cfg.Toolchain.HostTag = ""
	f.cfg.Toolchain.CacheDir = ""

	res, err := Build(ctx, nil, Deps{Config: f.cfg})
	require.NoError(t, err)
	assert.Len(t, res.Libraries, 1)
	assert.Equal(t, config.DefaultHostTag, f.cfg.Toolchain.HostTag)
	assert.Equal(t, filepath.Join(f.cfg.Output.Dir, "cache"), f.cfg.Toolchain.CacheDir)
}

func TestBuild_Execute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "aarch64", "x86")
	f.cfg.Output.PlaceholderName = "libstub.so"

	res, err := Build(ctx, nil, Deps{Config: f.cfg})
	require.NoError(t, err)
	require.NoError(t, execute(ctx, t, res))

	entries, _ := testutil.ReadZip(t, f.cfg.Output.APK)
	assert.Equal(t, "real", entries["lib/arm64-v8a/libdemo.so"])
	assert.Equal(t, "real", entries["lib/x86/libdemo.so"])
	assert.Equal(t, "so", entries["lib/arm64-v8a/libstub.so"])
	assert.Equal(t, "so", entries["lib/x86/libstub.so"])
	assert.Equal(t, "arsc", entries["resources.arsc"])

	calls := testutil.Calls(t, f.bin)
	require.NotEmpty(t, calls)
	assert.Contains(t, calls, "aapt package -f -F "+f.cfg.Output.APK+" -I "+f.cfg.Toolchain.PlatformJar(21)+
		" -M "+filepath.Join(f.cfg.Output.Dir, "gen", "AndroidManifest.xml")+
		" -S "+filepath.Join(f.cfg.Output.Dir, "gen", "res")+" --target-sdk-version 21")
	assert.Equal(t, "jarsigner -sigalg SHA1withRSA -digestalg SHA1 -keystore debug.keystore -storepass android "+
		f.cfg.Output.APK+" androiddebugkey", calls[len(calls)-1])

	status, err := res.Graph.NodeStatus(ctx, SignID)
	require.NoError(t, err)
	assert.Equal(t, node.StatusCompleted, status)
}

func TestBuild_GeneratedResourcesPrecedeUserResources(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "aarch64")
	userRes := filepath.Join(t.TempDir(), "res")
	require.NoError(t, os.MkdirAll(filepath.Join(userRes, "values"), 0o755))
	f.cfg.App.ResourceDir = userRes

	res, err := Build(ctx, nil, Deps{Config: f.cfg})
	require.NoError(t, err)
	require.NoError(t, execute(ctx, t, res))

	genRes := filepath.Join(f.cfg.Output.Dir, "gen", "res")
	assert.Contains(t, testutil.Calls(t, f.bin), "aapt package -f -F "+f.cfg.Output.APK+" -I "+f.cfg.Toolchain.PlatformJar(21)+
		" -M "+filepath.Join(f.cfg.Output.Dir, "gen", "AndroidManifest.xml")+
		" -S "+genRes+" -S "+userRes+" --auto-add-overlay --target-sdk-version 21")
}

func TestBuild_RealLibraryWinsOverSameNamedPlaceholder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "arm")

	res, err := Build(ctx, nil, Deps{Config: f.cfg})
	require.NoError(t, err)
	require.NoError(t, execute(ctx, t, res))

	entries, order := testutil.ReadZip(t, f.cfg.Output.APK)
	assert.Equal(t, "real", entries["lib/armeabi/libdemo.so"])
	var count int
	for _, name := range order {
		if name == "lib/armeabi/libdemo.so" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuild_Recompress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "x86_64")
	topo := inmemorytopology.New()

	res, err := Build(ctx, topo, Deps{Config: f.cfg, Recompress: true})
	require.NoError(t, err)

	deps, err := res.Graph.DependenciesOf(ctx, SignID)
	require.NoError(t, err)
	assert.Equal(t, []string{"apk.recompress"}, ids(deps))

	require.NoError(t, execute(ctx, t, res))
	methods := testutil.ZipMethods(t, f.cfg.Output.APK)
	assert.Equal(t, uint16(0), methods["resources.arsc"], "stored entries stay stored")
}

func TestBuild_HostToolFailureStopsBeforeSigning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "aarch64")
	f.cfg.Toolchain.ZipInjectTool = testutil.FakeTool(t, f.bin, "zipinject", `echo "cannot open archive" >&2; exit 3`)

	res, err := Build(ctx, nil, Deps{Config: f.cfg})
	require.NoError(t, err)

	err = execute(ctx, t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inject.aarch64.placeholder")

	var apkErr *apkerr.Error
	require.ErrorAs(t, err, &apkErr)
	assert.Equal(t, apkerr.KindProcess, apkErr.Kind)
	assert.Equal(t, 3, apkErr.ExitCode)

	status, err := res.Graph.NodeStatus(ctx, SignID)
	require.NoError(t, err)
	assert.Equal(t, node.StatusSkipped, status)
	for _, call := range testutil.Calls(t, f.bin) {
		assert.False(t, strings.HasPrefix(call, "jarsigner"), "signer must not run")
	}

	_, statErr := os.Stat(f.cfg.Output.APK)
	assert.NoError(t, statErr, "partial output is left in place")
}
