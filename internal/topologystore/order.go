package topologystore

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nativeapk/internal/node"
)

// DetectCycles returns an error naming a node on the first cycle found.
func DetectCycles(ctx context.Context, s Store) error {
	_, err := Sort(ctx, s)
	return err
}

// Sort returns every node in dependency order: each node appears after all
// the nodes it depends on. Ties keep insertion order. A cycle is an error.
func Sort(ctx context.Context, s Store) ([]*node.Node, error) {
	nodes := s.AllNodes(ctx)

	// permanent: fully visited. temporary: on the current DFS stack.
	permanent := make(map[string]bool, len(nodes))
	temporary := make(map[string]bool)
	sorted := make([]*node.Node, 0, len(nodes))

	var visit func(n *node.Node) error
	visit = func(n *node.Node) error {
		key := n.ID.String()
		if permanent[key] {
			return nil
		}
		if temporary[key] {
			return fmt.Errorf("cycle detected involving node '%s'", key)
		}
		temporary[key] = true

		deps, err := s.DependenciesOf(ctx, n.ID)
		if err != nil {
			return err
		}
		for _, depID := range deps {
			dep, ok := s.GetNode(ctx, depID)
			if !ok {
				return fmt.Errorf("node '%s' depends on unknown node '%s'", key, depID.String())
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		delete(temporary, key)
		permanent[key] = true
		sorted = append(sorted, n)
		return nil
	}

	for _, n := range nodes {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}
