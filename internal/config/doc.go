// Package config holds the format-agnostic model of a nativeapk build
// configuration.
//
// Format adapters (hcl_adapter, yaml_adapter) implement Loader and translate
// their files into a Model. The model is validated once and then passed
// explicitly, read-only, to every component that needs it.
package config
