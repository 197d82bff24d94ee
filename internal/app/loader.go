package app

import (
	"path/filepath"
	"strings"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/hcl_adapter"
	"github.com/specialistvlad/nativeapk/internal/yaml_adapter"
)

// LoaderFor picks the configuration loader by file extension.
func LoaderFor(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hcl_adapter.NewLoader(), nil
	case ".yaml", ".yml":
		return yaml_adapter.NewLoader(), nil
	default:
		return nil, apkerr.Configf("load config", "unsupported config file %q: expected .hcl, .yaml or .yml", path)
	}
}
