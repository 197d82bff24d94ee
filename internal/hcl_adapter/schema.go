package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot separates `locals` blocks from the rest of the file so they can
// be evaluated before anything that references them.
type fileRoot struct {
	Locals []*localsBlock `hcl:"locals,block"`
	Remain hcl.Body       `hcl:",remain"`
}

type localsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// buildFile is the decoded shape of a nativeapk.hcl file.
type buildFile struct {
	Targets   []string        `hcl:"targets"`
	Toolchain *toolchainBlock `hcl:"toolchain,block"`
	KeyStore  *keystoreBlock  `hcl:"keystore,block"`
	App       *appBlock       `hcl:"app,block"`
	Output    *outputBlock    `hcl:"output,block"`
	Publish   *publishBlock   `hcl:"publish,block"`
	Notify    *notifyBlock    `hcl:"notify,block"`
}

type toolchainBlock struct {
	SDKRoot           string            `hcl:"sdk_root"`
	NDKRoot           string            `hcl:"ndk_root"`
	BuildToolsVersion string            `hcl:"build_tools_version"`
	HostTag           string            `hcl:"host_tag,optional"`
	Tools             map[string]string `hcl:"tools,optional"`
	ZipInjectTool     string            `hcl:"zipinject_tool,optional"`
	CacheDir          string            `hcl:"cache_dir,optional"`
}

type keystoreBlock struct {
	File     string `hcl:"file"`
	Alias    string `hcl:"alias"`
	Password string `hcl:"password,optional"`
}

type appBlock struct {
	DisplayName string   `hcl:"display_name"`
	AppName     string   `hcl:"app_name"`
	PackageName string   `hcl:"package_name"`
	APILevel    int      `hcl:"api_level"`
	Source      string   `hcl:"source"`
	ResourceDir string   `hcl:"resource_dir,optional"`
	Fullscreen  bool     `hcl:"fullscreen,optional"`
	Assets      []string `hcl:"assets,optional"`
	Permissions []string `hcl:"permissions,optional"`
}

type outputBlock struct {
	Dir             string `hcl:"dir,optional"`
	APK             string `hcl:"apk,optional"`
	PlaceholderName string `hcl:"placeholder_name,optional"`
}

type publishBlock struct {
	Endpoint        string `hcl:"endpoint"`
	Bucket          string `hcl:"bucket"`
	Region          string `hcl:"region,optional"`
	Prefix          string `hcl:"prefix,optional"`
	AccessKeyID     string `hcl:"access_key_id,optional"`
	SecretAccessKey string `hcl:"secret_access_key,optional"`
}

type notifyBlock struct {
	URL       string `hcl:"url"`
	Path      string `hcl:"path,optional"`
	Namespace string `hcl:"namespace,optional"`
	Insecure  bool   `hcl:"insecure_skip_verify,optional"`
}
