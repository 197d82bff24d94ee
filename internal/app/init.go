package app

import (
	"errors"
	"io/fs"
	"os"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/hcl_adapter"
)

// TemplateModel is the starting configuration written by `nativeapk init`.
func TemplateModel() *config.Model {
	return &config.Model{
		Targets: []string{"aarch64", "arm", "x86_64", "x86"},
		Toolchain: config.Toolchain{
			SDKRoot:           "/opt/android-sdk",
			NDKRoot:           "/opt/android-sdk/ndk/26.1.10909125",
			BuildToolsVersion: "34.0.0",
			KeyStore: &config.KeyStore{
				File:     "debug.keystore",
				Alias:    "androiddebugkey",
				Password: "android",
			},
		},
		App: config.App{
			DisplayName: "Demo",
			AppName:     "demo",
			PackageName: "org.example.demo",
			APILevel:    21,
			Source:      ".",
			Permissions: []string{"android.permission.INTERNET"},
		},
		Output: config.Output{Dir: config.DefaultOutputDir},
	}
}

// WriteTemplate writes the template configuration to path. An existing
// file is only replaced when force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return apkerr.Configf("init", "%s already exists, use --force to overwrite", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return apkerr.IO("init", path, err)
		}
	}
	if err := os.WriteFile(path, hcl_adapter.Render(TemplateModel()), 0o644); err != nil {
		return apkerr.IO("init", path, err)
	}
	return nil
}
