package inmemorytopology

import (
	"context"
	"testing"

	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/topologystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNodes(t *testing.T, s *Store, ids ...string) []*node.Node {
	t.Helper()
	var out []*node.Node
	for _, id := range ids {
		n := &node.Node{ID: nodeid.MustParse(id)}
		require.NoError(t, s.AddNode(context.Background(), n))
		out = append(out, n)
	}
	return out
}

func link(t *testing.T, s *Store, from, to string) {
	t.Helper()
	require.NoError(t, s.AddDependency(context.Background(), nodeid.MustParse(from), nodeid.MustParse(to)))
}

func ids(addrs []nodeid.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}

func TestAddAndGetNode(t *testing.T) {
	s := New()
	ctx := context.Background()
	nodes := addNodes(t, s, "apk.base")

	retrieved, ok := s.GetNode(ctx, nodeid.MustParse("apk.base"))
	require.True(t, ok)
	assert.Same(t, nodes[0], retrieved)

	// Re-adding keeps the original node.
	require.NoError(t, s.AddNode(ctx, &node.Node{ID: nodeid.MustParse("apk.base"), Kind: node.KindSign}))
	retrieved, _ = s.GetNode(ctx, nodeid.MustParse("apk.base"))
	assert.Same(t, nodes[0], retrieved)
	assert.Len(t, s.AllNodes(ctx), 1)

	_, ok = s.GetNode(ctx, nodeid.MustParse("apk.sign"))
	assert.False(t, ok)
}

func TestDependencies(t *testing.T) {
	s := New()
	ctx := context.Background()
	addNodes(t, s, "apk.base", "lib.arm.compile", "inject.arm.library")
	link(t, s, "apk.base", "inject.arm.library")
	link(t, s, "lib.arm.compile", "inject.arm.library")
	link(t, s, "apk.base", "inject.arm.library") // duplicate edge

	deps, err := s.DependenciesOf(ctx, nodeid.MustParse("inject.arm.library"))
	require.NoError(t, err)
	assert.Equal(t, []string{"apk.base", "lib.arm.compile"}, ids(deps))

	dependents, err := s.DependentsOf(ctx, nodeid.MustParse("apk.base"))
	require.NoError(t, err)
	assert.Equal(t, []string{"inject.arm.library"}, ids(dependents))

	deps, err = s.DependenciesOf(ctx, nodeid.MustParse("apk.base"))
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestAddDependency_Errors(t *testing.T) {
	s := New()
	ctx := context.Background()
	addNodes(t, s, "apk.base")

	assert.Error(t, s.AddDependency(ctx, nodeid.MustParse("apk.missing"), nodeid.MustParse("apk.base")))
	assert.Error(t, s.AddDependency(ctx, nodeid.MustParse("apk.base"), nodeid.MustParse("apk.missing")))
	assert.Error(t, s.AddDependency(ctx, nodeid.MustParse("apk.base"), nodeid.MustParse("apk.base")))

	_, err := s.DependenciesOf(ctx, nodeid.MustParse("apk.missing"))
	assert.Error(t, err)
	_, err = s.DependentsOf(ctx, nodeid.MustParse("apk.missing"))
	assert.Error(t, err)
}

func TestSort(t *testing.T) {
	s := New()
	ctx := context.Background()
	addNodes(t, s, "apk.sign", "inject.x86.library", "apk.base", "apk.resources", "lib.x86.compile")
	link(t, s, "apk.resources", "apk.base")
	link(t, s, "apk.base", "inject.x86.library")
	link(t, s, "lib.x86.compile", "inject.x86.library")
	link(t, s, "inject.x86.library", "apk.sign")

	sorted, err := topologystore.Sort(ctx, s)
	require.NoError(t, err)

	var got []string
	for _, n := range sorted {
		got = append(got, n.ID.String())
	}
	assert.Equal(t, []string{"apk.resources", "apk.base", "lib.x86.compile", "inject.x86.library", "apk.sign"}, got)
	assert.NoError(t, topologystore.DetectCycles(ctx, s))
}

func TestDetectCycles(t *testing.T) {
	s := New()
	ctx := context.Background()
	addNodes(t, s, "a.one", "a.two", "a.three")
	link(t, s, "a.one", "a.two")
	link(t, s, "a.two", "a.three")
	link(t, s, "a.three", "a.one")

	err := topologystore.DetectCycles(ctx, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}
