package graph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/nodestore"
	"github.com/specialistvlad/nativeapk/internal/topologystore"
)

// Manager implements Graph by delegating structure queries to a topology
// store and state updates to a node store.
type Manager struct {
	topology topologystore.Store
	state    nodestore.Store
}

var _ Graph = (*Manager)(nil)

// New creates a graph manager over the given stores.
func New(ts topologystore.Store, ns nodestore.Store) *Manager {
	return &Manager{topology: ts, state: ns}
}

// Topology exposes the underlying topology store.
func (m *Manager) Topology() topologystore.Store {
	return m.topology
}

func (m *Manager) Node(ctx context.Context, id nodeid.Address) (*node.Node, bool) {
	return m.topology.GetNode(ctx, id)
}

func (m *Manager) AllNodes(ctx context.Context) []*node.Node {
	return m.topology.AllNodes(ctx)
}

func (m *Manager) Order(ctx context.Context) ([]*node.Node, error) {
	return topologystore.Sort(ctx, m.topology)
}

func (m *Manager) DependenciesOf(ctx context.Context, id nodeid.Address) ([]*node.Node, error) {
	ids, err := m.topology.DependenciesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.resolve(ctx, ids)
}

func (m *Manager) DependentsOf(ctx context.Context, id nodeid.Address) ([]*node.Node, error) {
	ids, err := m.topology.DependentsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.resolve(ctx, ids)
}

func (m *Manager) resolve(ctx context.Context, ids []nodeid.Address) ([]*node.Node, error) {
	nodes := make([]*node.Node, 0, len(ids))
	for _, id := range ids {
		n, ok := m.topology.GetNode(ctx, id)
		if !ok {
			return nil, fmt.Errorf("internal inconsistency: edge to unknown node '%s'", id.String())
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (m *Manager) NodeStatus(ctx context.Context, id nodeid.Address) (node.Status, error) {
	return m.state.GetStatus(ctx, id)
}

func (m *Manager) NodeOutput(ctx context.Context, id nodeid.Address) (any, error) {
	return m.state.GetOutput(ctx, id)
}

func (m *Manager) NodeError(ctx context.Context, id nodeid.Address) (error, error) {
	return m.state.GetError(ctx, id)
}

func (m *Manager) MarkRunning(ctx context.Context, id nodeid.Address) error {
	ctxlog.FromContext(ctx).Debug("Node running.", "node", id.String())
	return m.state.SetStatus(ctx, id, node.StatusRunning)
}

func (m *Manager) MarkCompleted(ctx context.Context, id nodeid.Address, output any) error {
	ctxlog.FromContext(ctx).Debug("Node completed.", "node", id.String())
	if err := m.state.SetOutput(ctx, id, output); err != nil {
		return err
	}
	return m.state.SetStatus(ctx, id, node.StatusCompleted)
}

func (m *Manager) MarkFailed(ctx context.Context, id nodeid.Address, nodeErr error) error {
	ctxlog.FromContext(ctx).Debug("Node failed.", "node", id.String(), "error", nodeErr)
	if err := m.state.SetError(ctx, id, nodeErr); err != nil {
		return err
	}
	return m.state.SetStatus(ctx, id, node.StatusFailed)
}

func (m *Manager) MarkSkipped(ctx context.Context, id nodeid.Address, reason error) error {
	ctxlog.FromContext(ctx).Debug("Node skipped.", "node", id.String(), "reason", reason)
	if err := m.state.SetError(ctx, id, reason); err != nil {
		return err
	}
	return m.state.SetStatus(ctx, id, node.StatusSkipped)
}
