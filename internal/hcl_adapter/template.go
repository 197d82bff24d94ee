package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// Render writes a model as an HCL configuration file. It is used by
// `nativeapk init` to produce a starting point.
func Render(m *config.Model) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("targets", stringList(m.Targets))
	root.AppendNewline()

	tc := root.AppendNewBlock("toolchain", nil).Body()
	tc.SetAttributeValue("sdk_root", cty.StringVal(m.Toolchain.SDKRoot))
	tc.SetAttributeValue("ndk_root", cty.StringVal(m.Toolchain.NDKRoot))
	tc.SetAttributeValue("build_tools_version", cty.StringVal(m.Toolchain.BuildToolsVersion))
	setOptional(tc, "host_tag", m.Toolchain.HostTag)
	setOptional(tc, "zipinject_tool", m.Toolchain.ZipInjectTool)
	setOptional(tc, "cache_dir", m.Toolchain.CacheDir)
	if len(m.Toolchain.Tools) > 0 {
		tools := make(map[string]cty.Value, len(m.Toolchain.Tools))
		for k, v := range m.Toolchain.Tools {
			tools[k] = cty.StringVal(v)
		}
		tc.SetAttributeValue("tools", cty.MapVal(tools))
	}

	if ks := m.Toolchain.KeyStore; ks != nil {
		root.AppendNewline()
		b := root.AppendNewBlock("keystore", nil).Body()
		b.SetAttributeValue("file", cty.StringVal(ks.File))
		b.SetAttributeValue("alias", cty.StringVal(ks.Alias))
		setOptional(b, "password", ks.Password)
	}

	root.AppendNewline()
	app := root.AppendNewBlock("app", nil).Body()
	app.SetAttributeValue("display_name", cty.StringVal(m.App.DisplayName))
	app.SetAttributeValue("app_name", cty.StringVal(m.App.AppName))
	app.SetAttributeValue("package_name", cty.StringVal(m.App.PackageName))
	app.SetAttributeValue("api_level", cty.NumberIntVal(int64(m.App.APILevel)))
	app.SetAttributeValue("source", cty.StringVal(m.App.Source))
	setOptional(app, "resource_dir", m.App.ResourceDir)
	if m.App.Fullscreen {
		app.SetAttributeValue("fullscreen", cty.True)
	}
	if len(m.App.Assets) > 0 {
		app.SetAttributeValue("assets", stringList(m.App.Assets))
	}
	if len(m.App.Permissions) > 0 {
		app.SetAttributeValue("permissions", stringList(m.App.Permissions))
	}

	root.AppendNewline()
	out := root.AppendNewBlock("output", nil).Body()
	setOptional(out, "dir", m.Output.Dir)
	setOptional(out, "apk", m.Output.APK)
	setOptional(out, "placeholder_name", m.Output.PlaceholderName)

	return hclwrite.Format(f.Bytes())
}

func setOptional(b *hclwrite.Body, name, value string) {
	if value != "" {
		b.SetAttributeValue(name, cty.StringVal(value))
	}
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	return cty.ListVal(vals)
}
