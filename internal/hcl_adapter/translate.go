package hcl_adapter

import "github.com/specialistvlad/nativeapk/internal/config"

func translate(f *buildFile) *config.Model {
	m := &config.Model{Targets: f.Targets}

	if tc := f.Toolchain; tc != nil {
		m.Toolchain = config.Toolchain{
			SDKRoot:           tc.SDKRoot,
			NDKRoot:           tc.NDKRoot,
			BuildToolsVersion: tc.BuildToolsVersion,
			HostTag:           tc.HostTag,
			Tools:             tc.Tools,
			ZipInjectTool:     tc.ZipInjectTool,
			CacheDir:          tc.CacheDir,
		}
	}
	if ks := f.KeyStore; ks != nil {
		m.Toolchain.KeyStore = &config.KeyStore{File: ks.File, Alias: ks.Alias, Password: ks.Password}
	}
	if app := f.App; app != nil {
		m.App = config.App{
			DisplayName: app.DisplayName,
			AppName:     app.AppName,
			PackageName: app.PackageName,
			APILevel:    app.APILevel,
			ResourceDir: app.ResourceDir,
			Fullscreen:  app.Fullscreen,
			Assets:      app.Assets,
			Permissions: app.Permissions,
			Source:      app.Source,
		}
	}
	if out := f.Output; out != nil {
		m.Output = config.Output{Dir: out.Dir, APK: out.APK, PlaceholderName: out.PlaceholderName}
	}
	if p := f.Publish; p != nil {
		m.Publish = &config.Publish{
			Endpoint:        p.Endpoint,
			Region:          p.Region,
			Bucket:          p.Bucket,
			Prefix:          p.Prefix,
			AccessKeyID:     p.AccessKeyID,
			SecretAccessKey: p.SecretAccessKey,
		}
	}
	if n := f.Notify; n != nil {
		m.Notify = &config.Notify{URL: n.URL, Path: n.Path, Namespace: n.Namespace, InsecureSkipVerify: n.Insecure}
	}
	return m
}
