package config

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	appNameRe     = regexp.MustCompile(`^[a-z_]+$`)
	packageNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)
)

// KnownTargets lists the supported target architecture names.
var KnownTargets = []string{"aarch64", "arm", "x86_64", "x86"}

// ValidationError holds every validation failure found in a model.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a model for semantic correctness. It returns nil or a
// *ValidationError listing every problem.
func Validate(m *Model) error {
	var errs []string

	tc := m.Toolchain
	if tc.SDKRoot == "" {
		errs = append(errs, "toolchain: 'sdk_root' is required")
	}
	if tc.NDKRoot == "" {
		errs = append(errs, "toolchain: 'ndk_root' is required")
	}
	if tc.BuildToolsVersion == "" {
		errs = append(errs, "toolchain: 'build_tools_version' is required")
	}
	if tc.KeyStore == nil {
		errs = append(errs, "keystore: block is required for signing")
	} else {
		if tc.KeyStore.File == "" {
			errs = append(errs, "keystore: 'file' is required")
		}
		if tc.KeyStore.Alias == "" {
			errs = append(errs, "keystore: 'alias' is required")
		}
	}

	app := m.App
	if app.DisplayName == "" {
		errs = append(errs, "app: 'display_name' is required")
	}
	if !appNameRe.MatchString(app.AppName) {
		errs = append(errs, fmt.Sprintf("app: 'app_name' %q must match %s", app.AppName, appNameRe.String()))
	}
	if !packageNameRe.MatchString(app.PackageName) {
		errs = append(errs, fmt.Sprintf("app: 'package_name' %q is not a valid reverse-domain package name", app.PackageName))
	}
	if app.APILevel <= 0 {
		errs = append(errs, fmt.Sprintf("app: 'api_level' must be positive, got %d", app.APILevel))
	}
	if app.Source == "" {
		errs = append(errs, "app: 'source' is required")
	}
	for i, p := range app.Permissions {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Sprintf("app: permission[%d] is empty", i))
		}
	}

	if len(m.Targets) == 0 {
		errs = append(errs, "at least one target is required")
	}
	seen := make(map[string]bool)
	for _, t := range m.Targets {
		switch {
		case !isKnownTarget(t):
			errs = append(errs, fmt.Sprintf("unknown target %q, must be one of: %s", t, strings.Join(KnownTargets, ", ")))
		case seen[t]:
			errs = append(errs, fmt.Sprintf("duplicate target %q", t))
		}
		seen[t] = true
	}

	if m.Output.APK == "" {
		errs = append(errs, "output: 'apk' is required")
	}
	if strings.ContainsAny(m.Output.PlaceholderName, `/\`) {
		errs = append(errs, fmt.Sprintf("output: 'placeholder_name' %q must be a plain file name", m.Output.PlaceholderName))
	}

	if p := m.Publish; p != nil {
		if p.Bucket == "" {
			errs = append(errs, "publish: 'bucket' is required")
		}
		if p.Endpoint == "" {
			errs = append(errs, "publish: 'endpoint' is required")
		}
	}
	if n := m.Notify; n != nil && n.URL == "" {
		errs = append(errs, "notify: 'url' is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func isKnownTarget(name string) bool {
	for _, t := range KnownTargets {
		if t == name {
			return true
		}
	}
	return false
}
