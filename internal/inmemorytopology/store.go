// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface.
package inmemorytopology

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/topologystore"
)

// edges is an insertion-ordered set of node keys.
type edges struct {
	order []nodeid.Address
	seen  map[string]struct{}
}

func (e *edges) add(id nodeid.Address) {
	if e.seen == nil {
		e.seen = make(map[string]struct{})
	}
	key := id.String()
	if _, ok := e.seen[key]; ok {
		return
	}
	e.seen[key] = struct{}{}
	e.order = append(e.order, id)
}

func (e *edges) list() []nodeid.Address {
	if e == nil {
		return []nodeid.Address{}
	}
	out := make([]nodeid.Address, len(e.order))
	copy(out, e.order)
	return out
}

// Store keeps nodes and both edge directions in maps guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	order      []*node.Node
	nodes      map[string]*node.Node
	deps       map[string]*edges // node -> nodes it depends on
	dependents map[string]*edges // node -> nodes depending on it
}

var _ topologystore.Store = (*Store)(nil)

// New creates an empty topology.
func New() *Store {
	return &Store{
		nodes:      make(map[string]*node.Node),
		deps:       make(map[string]*edges),
		dependents: make(map[string]*edges),
	}
}

func (s *Store) AddNode(ctx context.Context, n *node.Node) error {
	if n == nil {
		return fmt.Errorf("cannot add nil node")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := n.ID.String()
	if _, exists := s.nodes[key]; exists {
		return nil
	}
	s.nodes[key] = n
	s.order = append(s.order, n)
	return nil
}

func (s *Store) AddDependency(ctx context.Context, from, to nodeid.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromKey, toKey := from.String(), to.String()
	if _, exists := s.nodes[fromKey]; !exists {
		return fmt.Errorf("dependency source node '%s' not found in topology", fromKey)
	}
	if _, exists := s.nodes[toKey]; !exists {
		return fmt.Errorf("dependency target node '%s' not found in topology", toKey)
	}
	if fromKey == toKey {
		return fmt.Errorf("node '%s' cannot depend on itself", fromKey)
	}

	if s.deps[toKey] == nil {
		s.deps[toKey] = &edges{}
	}
	s.deps[toKey].add(from)
	if s.dependents[fromKey] == nil {
		s.dependents[fromKey] = &edges{}
	}
	s.dependents[fromKey].add(to)
	return nil
}

func (s *Store) GetNode(ctx context.Context, id nodeid.Address) (*node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id.String()]
	return n, ok
}

func (s *Store) AllNodes(ctx context.Context) []*node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node.Node, len(s.order))
	copy(nodes, s.order)
	return nodes
}

func (s *Store) DependenciesOf(ctx context.Context, id nodeid.Address) ([]nodeid.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := id.String()
	if _, exists := s.nodes[key]; !exists {
		return nil, fmt.Errorf("node '%s' not found in topology", key)
	}
	return s.deps[key].list(), nil
}

func (s *Store) DependentsOf(ctx context.Context, id nodeid.Address) ([]nodeid.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := id.String()
	if _, exists := s.nodes[key]; !exists {
		return nil, fmt.Errorf("node '%s' not found in topology", key)
	}
	return s.dependents[key].list(), nil
}
