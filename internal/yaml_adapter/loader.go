// Package yaml_adapter loads nativeapk configuration written in YAML.
package yaml_adapter

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

type buildFile struct {
	Targets   []string  `yaml:"targets"`
	Toolchain toolchain `yaml:"toolchain"`
	KeyStore  *keystore `yaml:"keystore"`
	App       app       `yaml:"app"`
	Output    output    `yaml:"output"`
	Publish   *publish  `yaml:"publish"`
	Notify    *notify   `yaml:"notify"`
}

type toolchain struct {
	SDKRoot           string            `yaml:"sdk_root"`
	NDKRoot           string            `yaml:"ndk_root"`
	BuildToolsVersion string            `yaml:"build_tools_version"`
	HostTag           string            `yaml:"host_tag"`
	Tools             map[string]string `yaml:"tools"`
	ZipInjectTool     string            `yaml:"zipinject_tool"`
	CacheDir          string            `yaml:"cache_dir"`
}

type keystore struct {
	File     string `yaml:"file"`
	Alias    string `yaml:"alias"`
	Password string `yaml:"password"`
}

type app struct {
	DisplayName string   `yaml:"display_name"`
	AppName     string   `yaml:"app_name"`
	PackageName string   `yaml:"package_name"`
	APILevel    int      `yaml:"api_level"`
	Source      string   `yaml:"source"`
	ResourceDir string   `yaml:"resource_dir"`
	Fullscreen  bool     `yaml:"fullscreen"`
	Assets      []string `yaml:"assets"`
	Permissions []string `yaml:"permissions"`
}

type output struct {
	Dir             string `yaml:"dir"`
	APK             string `yaml:"apk"`
	PlaceholderName string `yaml:"placeholder_name"`
}

type publish struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type notify struct {
	URL       string `yaml:"url"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
	Insecure  bool   `yaml:"insecure_skip_verify"`
}

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a YAML file into the configuration model. Unknown keys are
// rejected.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var file buildFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	m := &config.Model{
		Targets: file.Targets,
		Toolchain: config.Toolchain{
			SDKRoot:           file.Toolchain.SDKRoot,
			NDKRoot:           file.Toolchain.NDKRoot,
			BuildToolsVersion: file.Toolchain.BuildToolsVersion,
			HostTag:           file.Toolchain.HostTag,
			Tools:             file.Toolchain.Tools,
			ZipInjectTool:     file.Toolchain.ZipInjectTool,
			CacheDir:          file.Toolchain.CacheDir,
		},
		App: config.App{
			DisplayName: file.App.DisplayName,
			AppName:     file.App.AppName,
			PackageName: file.App.PackageName,
			APILevel:    file.App.APILevel,
			ResourceDir: file.App.ResourceDir,
			Fullscreen:  file.App.Fullscreen,
			Assets:      file.App.Assets,
			Permissions: file.App.Permissions,
			Source:      file.App.Source,
		},
		Output: config.Output{
			Dir:             file.Output.Dir,
			APK:             file.Output.APK,
			PlaceholderName: file.Output.PlaceholderName,
		},
	}
	if ks := file.KeyStore; ks != nil {
		m.Toolchain.KeyStore = &config.KeyStore{File: ks.File, Alias: ks.Alias, Password: ks.Password}
	}
	if p := file.Publish; p != nil {
		m.Publish = &config.Publish{
			Endpoint:        p.Endpoint,
			Region:          p.Region,
			Bucket:          p.Bucket,
			Prefix:          p.Prefix,
			AccessKeyID:     p.AccessKeyID,
			SecretAccessKey: p.SecretAccessKey,
		}
	}
	if n := file.Notify; n != nil {
		m.Notify = &config.Notify{URL: n.URL, Path: n.Path, Namespace: n.Namespace, InsecureSkipVerify: n.Insecure}
	}

	m.ApplyDefaults()
	logger.Debug("YAML loading complete.", "targets", len(m.Targets))
	return m, nil
}
