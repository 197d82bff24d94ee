package graph

import (
	"context"

	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
)

// Graph is the read/update API used while a build graph executes.
type Graph interface {
	// Node looks up a node by address.
	Node(ctx context.Context, id nodeid.Address) (*node.Node, bool)
	// AllNodes returns every node in insertion order.
	AllNodes(ctx context.Context) []*node.Node
	// Order returns every node in dependency order, or an error on a cycle.
	Order(ctx context.Context) ([]*node.Node, error)
	// DependenciesOf returns the nodes `id` directly depends on.
	DependenciesOf(ctx context.Context, id nodeid.Address) ([]*node.Node, error)
	// DependentsOf returns the nodes directly depending on `id`.
	DependentsOf(ctx context.Context, id nodeid.Address) ([]*node.Node, error)

	NodeStatus(ctx context.Context, id nodeid.Address) (node.Status, error)
	NodeOutput(ctx context.Context, id nodeid.Address) (any, error)
	NodeError(ctx context.Context, id nodeid.Address) (error, error)

	MarkRunning(ctx context.Context, id nodeid.Address) error
	MarkCompleted(ctx context.Context, id nodeid.Address, output any) error
	MarkFailed(ctx context.Context, id nodeid.Address, nodeErr error) error
	MarkSkipped(ctx context.Context, id nodeid.Address, reason error) error
}
