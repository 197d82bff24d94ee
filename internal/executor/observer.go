package executor

import (
	"context"
	"time"

	"github.com/specialistvlad/nativeapk/internal/node"
)

// Event describes a node reaching a final status.
type Event struct {
	Node     *node.Node
	Status   node.Status
	Err      error
	Attempts int
	Duration time.Duration
}

// Observer follows a run. Calls come from worker goroutines, so
// implementations must be safe for concurrent use.
type Observer interface {
	// OnPlan is called once before any node runs with the total node count.
	OnPlan(ctx context.Context, total int)
	// OnStart is called before a node's action runs.
	OnStart(ctx context.Context, n *node.Node)
	// OnFinish is called once per node, including skipped ones.
	OnFinish(ctx context.Context, ev Event)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnPlan(context.Context, int)         {}
func (NopObserver) OnStart(context.Context, *node.Node) {}
func (NopObserver) OnFinish(context.Context, Event)     {}
