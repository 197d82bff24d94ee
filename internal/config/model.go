package config

import (
	"path/filepath"
	"strconv"
)

// Model is the complete configuration of one application build.
type Model struct {
	Toolchain Toolchain
	App       App
	// Targets lists the enabled target architectures by name.
	Targets []string
	Output  Output
	Publish *Publish
	Notify  *Notify
}

// Toolchain locates the SDK, the NDK and the external tools.
type Toolchain struct {
	SDKRoot           string
	NDKRoot           string
	BuildToolsVersion string
	// HostTag is the NDK prebuilt host directory, e.g. linux-x86_64.
	HostTag string
	// Tools overrides tool locations by name (aapt, zipalign, jarsigner,
	// adb, keytool, go).
	Tools map[string]string
	// ZipInjectTool is the archive injection helper. Empty selects the
	// in-process implementation.
	ZipInjectTool string
	// CacheDir holds generated libc description files.
	CacheDir string
	KeyStore *KeyStore
}

// KeyStore references the signing key. The values are only forwarded to
// the signer and key generator.
type KeyStore struct {
	File     string
	Alias    string
	Password string
}

// App describes the application being packaged.
type App struct {
	DisplayName string
	// AppName names the native library (lib<AppName>.so).
	AppName     string
	PackageName string
	APILevel    int
	ResourceDir string
	Fullscreen  bool
	Assets      []string
	Permissions []string
	// Source is the Go package compiled into the native library.
	Source string
}

// Output controls where build artefacts go.
type Output struct {
	Dir string
	APK string
	// PlaceholderName is the file name of the placeholder library. Empty
	// means the real library's name.
	PlaceholderName string
}

// Publish configures the S3-compatible upload of the final APK.
type Publish struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// Notify configures the socket.io build event stream.
type Notify struct {
	URL       string
	Path      string
	Namespace string
	// InsecureSkipVerify disables TLS certificate checks for the dashboard.
	InsecureSkipVerify bool
}

const (
	DefaultHostTag   = "linux-x86_64"
	DefaultOutputDir = "build"
	DefaultRegion    = "auto"
	DefaultNotifyNS  = "/builds"
)

// ApplyDefaults fills unset optional values.
func (m *Model) ApplyDefaults() {
	if m.Toolchain.HostTag == "" {
		m.Toolchain.HostTag = DefaultHostTag
	}
	if m.Output.Dir == "" {
		m.Output.Dir = DefaultOutputDir
	}
	if m.Toolchain.CacheDir == "" {
		m.Toolchain.CacheDir = filepath.Join(m.Output.Dir, "cache")
	}
	if m.Output.APK == "" && m.App.AppName != "" {
		m.Output.APK = filepath.Join(m.Output.Dir, m.App.AppName+".apk")
	}
	if m.Publish != nil && m.Publish.Region == "" {
		m.Publish.Region = DefaultRegion
	}
	if m.Notify != nil && m.Notify.Namespace == "" {
		m.Notify.Namespace = DefaultNotifyNS
	}
}

// LibraryName is the file name of the native library, lib<app_name>.so.
func (a App) LibraryName() string {
	return "lib" + a.AppName + ".so"
}

// PlaceholderFile resolves the placeholder library file name.
func (m *Model) PlaceholderFile() string {
	if m.Output.PlaceholderName != "" {
		return m.Output.PlaceholderName
	}
	return m.App.LibraryName()
}

// BuildToolsDir is <sdk>/build-tools/<version>.
func (t Toolchain) BuildToolsDir() string {
	return filepath.Join(t.SDKRoot, "build-tools", t.BuildToolsVersion)
}

// PlatformJar is the android.jar of the given API level.
func (t Toolchain) PlatformJar(api int) string {
	return filepath.Join(t.SDKRoot, "platforms", "android-"+strconv.Itoa(api), "android.jar")
}

// Tool resolves an external tool. Explicit overrides win; build-tools and
// platform-tools binaries resolve inside the SDK; everything else is looked
// up on PATH by name.
func (t Toolchain) Tool(name string) string {
	if p, ok := t.Tools[name]; ok && p != "" {
		return p
	}
	switch name {
	case "aapt", "zipalign", "apksigner":
		return filepath.Join(t.BuildToolsDir(), name)
	case "adb":
		return filepath.Join(t.SDKRoot, "platform-tools", name)
	default:
		return name
	}
}
