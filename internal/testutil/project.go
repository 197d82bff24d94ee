package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nativeapk/internal/ndk"
)

// Project is a complete build setup on disk: a fake SDK and NDK, fake
// external tools and a nativeapk.hcl referencing them.
type Project struct {
	Dir        string
	ConfigPath string
	// Bin holds the fake tools and their calls.log.
	Bin string
	APK string
}

// NewProject creates a project building for targets. Extra HCL is appended
// to the generated configuration.
func NewProject(t *testing.T, targets []string, extra string) *Project {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "bin")

	base := filepath.Join(dir, "base.zip")
	WriteZip(t, base, map[string]string{
		"AndroidManifest.xml": "<manifest/>",
		"resources.arsc":      "arsc",
	})

	ndkRoot := filepath.Join(dir, "ndk")
	FakeNDK(t, ndkRoot, "linux-x86_64", 21, ndk.ArchAArch64, ndk.ArchARM, ndk.ArchX86_64, ndk.ArchX86)

	tools := map[string]string{
		"aapt": FakeTool(t, bin, "aapt", `apk=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-F" ]; then apk="$a"; fi
  prev="$a"
done
cp "`+base+`" "$apk"`),
		"go":        FakeTool(t, bin, "go", OutputFlag+"\nprintf real > \"$out\""),
		"jarsigner": FakeTool(t, bin, "jarsigner", ""),
		"zipalign":  FakeTool(t, bin, "zipalign", `cp "$3" "$4"`),
		"adb":       FakeTool(t, bin, "adb", ""),
		"keytool": FakeTool(t, bin, "keytool", `ks=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-keystore" ]; then ks="$a"; fi
  prev="$a"
done
printf key > "$ks"`),
	}

	quoted := make([]string, len(targets))
	for i, target := range targets {
		quoted[i] = fmt.Sprintf("%q", target)
	}
	var toolLines []string
	for _, name := range []string{"aapt", "adb", "go", "jarsigner", "keytool", "zipalign"} {
		toolLines = append(toolLines, fmt.Sprintf("    %s = %q", name, tools[name]))
	}

	out := filepath.Join(dir, "out")
	hcl := fmt.Sprintf(`targets = [%s]

toolchain {
  sdk_root            = %q
  ndk_root            = %q
  build_tools_version = "34.0.0"
  tools = {
%s
  }
}

keystore {
  file     = %q
  alias    = "androiddebugkey"
  password = "android"
}

app {
  display_name = "Demo"
  app_name     = "demo"
  package_name = "org.example.demo"
  api_level    = 21
  source       = "./app"
}

output {
  dir = %q
}
%s`, strings.Join(quoted, ", "), filepath.Join(dir, "sdk"), ndkRoot, strings.Join(toolLines, "\n"),
		filepath.Join(dir, "debug.keystore"), out, extra)

	cfgPath := filepath.Join(dir, "nativeapk.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(hcl), 0o644))

	return &Project{Dir: dir, ConfigPath: cfgPath, Bin: bin, APK: filepath.Join(out, "demo.apk")}
}
