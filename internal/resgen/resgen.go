// Package resgen renders the generated Android resources: the string table
// and the application manifest.
//
// Rendering is a pure function of the app configuration and is byte-for-byte
// deterministic. Every configuration value is escaped before it is embedded.
package resgen

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/config"
)

// FullscreenTheme is applied to the application element when fullscreen is
// requested.
const FullscreenTheme = "@android:style/Theme.NoTitleBar.Fullscreen"

const (
	// StringsPath is the strings file location relative to the work dir.
	StringsPath = "res/values/strings.xml"
	// ManifestPath is the manifest location relative to the work dir.
	ManifestPath = "AndroidManifest.xml"
)

var funcs = template.FuncMap{
	"attr":   escapeXML,
	"string": escapeString,
}

var stringsTmpl = template.Must(template.New("strings").Funcs(funcs).Parse(`<?xml version="1.0" encoding="utf-8"?>
<resources>
	<string name="app_name">{{string .DisplayName}}</string>
	<string name="lib_name">{{string .AppName}}</string>
	<string name="package_name">{{string .PackageName}}</string>
</resources>
`))

var manifestTmpl = template.Must(template.New("manifest").Funcs(funcs).Parse(`<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android"
	package="{{attr .PackageName}}"
	android:versionCode="1"
	android:versionName="1.0">
{{range .Permissions}}
	<uses-permission android:name="{{attr .}}"/>
{{- end}}
	<uses-sdk android:minSdkVersion="{{.APILevel}}" android:targetSdkVersion="{{.APILevel}}"/>

	<application android:label="@string/app_name" android:hasCode="false"{{if .Fullscreen}} android:theme="` + FullscreenTheme + `"{{end}}>
		<activity android:name="android.app.NativeActivity"
			android:label="@string/app_name"
			android:configChanges="orientation|keyboardHidden|screenSize">
			<meta-data android:name="android.app.lib_name" android:value="@string/lib_name"/>
			<intent-filter>
				<action android:name="android.intent.action.MAIN"/>
				<category android:name="android.intent.category.LAUNCHER"/>
			</intent-filter>
		</activity>
	</application>
</manifest>
`))

// RenderStrings renders res/values/strings.xml with exactly three entries:
// app_name, lib_name and package_name.
func RenderStrings(app config.App) ([]byte, error) {
	var buf bytes.Buffer
	if err := stringsTmpl.Execute(&buf, app); err != nil {
		return nil, apkerr.Config("render strings", err)
	}
	return buf.Bytes(), nil
}

// RenderManifest renders AndroidManifest.xml declaring a single
// NativeActivity that loads the library named by @string/lib_name.
func RenderManifest(app config.App) ([]byte, error) {
	var buf bytes.Buffer
	if err := manifestTmpl.Execute(&buf, app); err != nil {
		return nil, apkerr.Config("render manifest", err)
	}
	return buf.Bytes(), nil
}

// WriteStrings renders the strings file into workDir and returns its path.
func WriteStrings(workDir string, app config.App) (string, error) {
	data, err := RenderStrings(app)
	if err != nil {
		return "", err
	}
	return write(filepath.Join(workDir, filepath.FromSlash(StringsPath)), data)
}

// WriteManifest renders the manifest into workDir and returns its path.
func WriteManifest(workDir string, app config.App) (string, error) {
	data, err := RenderManifest(app)
	if err != nil {
		return "", err
	}
	return write(filepath.Join(workDir, ManifestPath), data)
}

func write(path string, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", apkerr.IO("write resources", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apkerr.IO("write resources", path, err)
	}
	return path, nil
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

var resourceEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, `\"`)

// escapeString escapes a value for an Android string resource: the
// resource compiler's own backslash escapes first, then XML escaping.
// A leading @ or ? would otherwise be read as a reference.
func escapeString(s string) string {
	s = resourceEscaper.Replace(s)
	if strings.HasPrefix(s, "@") || strings.HasPrefix(s, "?") {
		s = `\` + s
	}
	return escapeXML(s)
}
