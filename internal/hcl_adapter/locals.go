package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// evalContext builds the expression scope. Only `local.*` is defined;
// locals are evaluated in source order and may reference earlier locals.
func evalContext(ctx context.Context, blocks []*localsBlock) (*hcl.EvalContext, error) {
	logger := ctxlog.FromContext(ctx)

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"local": cty.EmptyObjectVal,
		},
	}

	locals := make(map[string]cty.Value)
	for _, block := range blocks {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to read locals: %w", diags)
		}

		ordered := make([]*hcl.Attribute, 0, len(attrs))
		for _, attr := range attrs {
			ordered = append(ordered, attr)
		}
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
		})

		for _, attr := range ordered {
			if _, dup := locals[attr.Name]; dup {
				return nil, fmt.Errorf("local %q is defined more than once", attr.Name)
			}
			val, diags := attr.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate local %q: %w", attr.Name, diags)
			}
			locals[attr.Name] = val
			evalCtx.Variables["local"] = cty.ObjectVal(locals)
		}
	}

	logger.Debug("Evaluated locals.", "count", len(locals))
	return evalCtx, nil
}
