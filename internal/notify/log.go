package notify

import (
	"context"

	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/node"
)

// LogObserver reports node transitions through the context logger.
type LogObserver struct{}

var _ executor.Observer = LogObserver{}

func (LogObserver) OnPlan(ctx context.Context, total int) {
	ctxlog.FromContext(ctx).Info("Executing build graph.", "nodes", total)
}

func (LogObserver) OnStart(ctx context.Context, n *node.Node) {
	ctxlog.FromContext(ctx).Info("Node started.", nodeAttrs(n)...)
}

func (LogObserver) OnFinish(ctx context.Context, ev executor.Event) {
	logger := ctxlog.FromContext(ctx)
	args := append(nodeAttrs(ev.Node), "status", ev.Status.String(), "duration", ev.Duration)
	switch ev.Status {
	case node.StatusFailed:
		logger.Error("Node failed.", append(args, "attempts", ev.Attempts, "error", ev.Err)...)
	case node.StatusSkipped:
		logger.Warn("Node skipped.", args...)
	default:
		logger.Info("Node finished.", args...)
	}
}

func nodeAttrs(n *node.Node) []any {
	args := []any{"node", n.ID.String(), "kind", string(n.Kind)}
	if n.Arch != "" {
		args = append(args, "arch", n.Arch)
	}
	return args
}
