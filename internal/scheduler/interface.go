package scheduler

import (
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
)

// Scheduler tracks dependency satisfaction for one execution of a graph.
// Implementations must be safe for concurrent use by executor workers.
type Scheduler interface {
	// Roots returns the nodes without dependencies.
	Roots() []*node.Node
	// Complete records a successful node and returns the dependents that
	// became ready as a result.
	Complete(id nodeid.Address) []*node.Node
	// Fail records a failed or cancelled node and returns every transitive
	// dependent that is now skipped. Each node is returned at most once
	// across all calls.
	Fail(id nodeid.Address) []*node.Node
	// Remaining counts nodes that are neither completed, failed nor skipped.
	Remaining() int
}
