package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/graph"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
)

type entry struct {
	node       *node.Node
	unmet      int
	dependents []string
	done       bool
}

// DefaultScheduler is the in-memory Scheduler. It snapshots the graph's
// topology at construction, so the topology must not change afterwards.
type DefaultScheduler struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*entry
	left    int
}

var _ Scheduler = (*DefaultScheduler)(nil)

// New builds a scheduler for g. It fails if the graph has a cycle, since a
// cycle would leave nodes that can never become ready.
func New(ctx context.Context, g graph.Graph) (*DefaultScheduler, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := g.Order(ctx); err != nil {
		return nil, err
	}

	nodes := g.AllNodes(ctx)
	s := &DefaultScheduler{
		order:   make([]string, 0, len(nodes)),
		entries: make(map[string]*entry, len(nodes)),
		left:    len(nodes),
	}
	for _, n := range nodes {
		key := n.ID.String()
		s.order = append(s.order, key)
		s.entries[key] = &entry{node: n}
	}
	for _, n := range nodes {
		deps, err := g.DependenciesOf(ctx, n.ID)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		key := n.ID.String()
		s.entries[key].unmet = len(deps)
		for _, d := range deps {
			dep := s.entries[d.ID.String()]
			dep.dependents = append(dep.dependents, key)
		}
	}
	logger.Debug("Scheduler initialised.", "nodes", len(nodes))
	return s, nil
}

func (s *DefaultScheduler) Roots() []*node.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	var roots []*node.Node
	for _, key := range s.order {
		if e := s.entries[key]; e.unmet == 0 && !e.done {
			roots = append(roots, e.node)
		}
	}
	return roots
}

func (s *DefaultScheduler) Complete(id nodeid.Address) []*node.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id.String()]
	if !ok || e.done {
		return nil
	}
	e.done = true
	s.left--

	var ready []*node.Node
	for _, key := range e.dependents {
		dep := s.entries[key]
		if dep.done {
			continue
		}
		dep.unmet--
		if dep.unmet == 0 {
			ready = append(ready, dep.node)
		}
	}
	return ready
}

func (s *DefaultScheduler) Fail(id nodeid.Address) []*node.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id.String()]
	if !ok || e.done {
		return nil
	}
	e.done = true
	s.left--

	var skipped []*node.Node
	var skip func(e *entry)
	skip = func(e *entry) {
		for _, key := range e.dependents {
			dep := s.entries[key]
			if dep.done {
				continue
			}
			dep.done = true
			s.left--
			skipped = append(skipped, dep.node)
			skip(dep)
		}
	}
	skip(e)
	return skipped
}

func (s *DefaultScheduler) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.left
}
