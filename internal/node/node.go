// Package node defines the vertices of the build graph.
package node

import (
	"context"

	"github.com/specialistvlad/nativeapk/internal/nodeid"
)

// Kind says which pipeline stage a node performs.
type Kind string

const (
	KindResources         Kind = "resources"
	KindBaseArchive       Kind = "base"
	KindCompile           Kind = "compile"
	KindPlaceholder       Kind = "placeholder"
	KindInjectPlaceholder Kind = "inject-placeholder"
	KindInjectLibrary     Kind = "inject-library"
	KindRecompress        Kind = "recompress"
	KindSign              Kind = "sign"
	KindAlign             Kind = "align"
	KindInstall           Kind = "install"
	KindLaunch            Kind = "launch"
	KindSymbols           Kind = "symbols"
	KindPublish           Kind = "publish"
)

// Action is the deferred work of a node. It runs only when an executor
// schedules the node; the returned value is recorded as the node's output.
type Action func(ctx context.Context) (any, error)

// Node is a single build step. Its identity is its address; edges between
// nodes live in the topology store, not on the node.
type Node struct {
	ID   nodeid.Address
	Kind Kind
	// Arch is the target architecture for per-target stages, empty otherwise.
	Arch   string
	Action Action
}

// New creates a node for a whole-archive stage.
func New(id nodeid.Address, kind Kind, action Action) *Node {
	return &Node{ID: id, Kind: kind, Action: action}
}

// NewForArch creates a node for a per-target stage.
func NewForArch(id nodeid.Address, kind Kind, arch string, action Action) *Node {
	return &Node{ID: id, Kind: kind, Arch: arch, Action: action}
}

// Run executes the node's action. A node without an action succeeds with no
// output.
func (n *Node) Run(ctx context.Context) (any, error) {
	if n.Action == nil {
		return nil, nil
	}
	return n.Action(ctx)
}

func (n *Node) String() string {
	return n.ID.String()
}
