// Package hcl_adapter loads nativeapk configuration written in HCL.
package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses a single HCL file into the configuration model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	evalCtx, err := evalContext(ctx, root.Locals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var file buildFile
	if diags := gohcl.DecodeBody(root.Remain, evalCtx, &file); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model := translate(&file)
	model.ApplyDefaults()
	logger.Debug("HCL loading complete.", "targets", len(model.Targets), "permissions", len(model.App.Permissions))
	return model, nil
}
