// Package topologystore defines the storage of the static build graph: the
// nodes and the dependency edges between them.
//
// The topology is written once while the pipeline is constructed and is only
// read afterwards. Mutable execution state lives in nodestore.
package topologystore

import (
	"context"

	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
)

// Store holds the nodes and edges of a directed acyclic build graph.
//
// Implementations must be safe for concurrent use. Node and edge listings are
// returned in insertion order so that anything derived from them is
// deterministic for a given configuration.
type Store interface {
	// AddNode registers a node. Adding a node with an existing ID is a no-op.
	AddNode(ctx context.Context, n *node.Node) error

	// AddDependency records that `to` depends on `from`: `from` must complete
	// before `to` may start. Both nodes must already exist.
	AddDependency(ctx context.Context, from, to nodeid.Address) error

	// GetNode looks up a node by address.
	GetNode(ctx context.Context, id nodeid.Address) (*node.Node, bool)

	// AllNodes returns a snapshot of every node.
	AllNodes(ctx context.Context) []*node.Node

	// DependenciesOf returns the nodes `id` directly depends on.
	DependenciesOf(ctx context.Context, id nodeid.Address) ([]nodeid.Address, error)

	// DependentsOf returns the nodes that directly depend on `id`.
	DependentsOf(ctx context.Context, id nodeid.Address) ([]nodeid.Address, error)
}
