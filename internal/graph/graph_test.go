package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/nativeapk/internal/inmemorystore"
	"github.com/specialistvlad/nativeapk/internal/inmemorytopology"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestGraph(t *testing.T, ids []string, edges [][2]string) *Manager {
	t.Helper()
	ctx := context.Background()
	topo := inmemorytopology.New()
	for _, id := range ids {
		require.NoError(t, topo.AddNode(ctx, &node.Node{ID: nodeid.MustParse(id), Kind: node.KindCompile}))
	}
	for _, e := range edges {
		require.NoError(t, topo.AddDependency(ctx, nodeid.MustParse(e[0]), nodeid.MustParse(e[1])))
	}
	return New(topo, inmemorystore.New())
}

func names(nodes []*node.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID.String()
	}
	return out
}

func TestManager_Structure(t *testing.T) {
	ctx := context.Background()
	g := createTestGraph(t,
		[]string{"apk.sign", "inject.arm.library", "inject.arm.placeholder", "apk.base"},
		[][2]string{
			{"apk.base", "inject.arm.placeholder"},
			{"apk.base", "inject.arm.library"},
			{"inject.arm.placeholder", "inject.arm.library"},
			{"inject.arm.library", "apk.sign"},
		})

	n, ok := g.Node(ctx, nodeid.MustParse("apk.base"))
	require.True(t, ok)
	assert.Equal(t, "apk.base", n.ID.String())

	deps, err := g.DependenciesOf(ctx, nodeid.MustParse("inject.arm.library"))
	require.NoError(t, err)
	assert.Equal(t, []string{"apk.base", "inject.arm.placeholder"}, names(deps))

	dependents, err := g.DependentsOf(ctx, nodeid.MustParse("apk.base"))
	require.NoError(t, err)
	assert.Equal(t, []string{"inject.arm.placeholder", "inject.arm.library"}, names(dependents))

	order, err := g.Order(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apk.base", "inject.arm.placeholder", "inject.arm.library", "apk.sign"}, names(order))
	assert.Len(t, g.AllNodes(ctx), 4)

	_, err = g.DependenciesOf(ctx, nodeid.MustParse("apk.missing"))
	assert.Error(t, err)
}

func TestManager_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	g := createTestGraph(t, []string{"apk.base", "apk.sign"}, nil)
	base := nodeid.MustParse("apk.base")
	sign := nodeid.MustParse("apk.sign")

	status, err := g.NodeStatus(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, node.StatusPending, status)

	require.NoError(t, g.MarkRunning(ctx, base))
	status, _ = g.NodeStatus(ctx, base)
	assert.Equal(t, node.StatusRunning, status)

	require.NoError(t, g.MarkCompleted(ctx, base, "demo.apk"))
	status, _ = g.NodeStatus(ctx, base)
	out, _ := g.NodeOutput(ctx, base)
	assert.Equal(t, node.StatusCompleted, status)
	assert.Equal(t, "demo.apk", out)

	boom := errors.New("boom")
	require.NoError(t, g.MarkFailed(ctx, sign, boom))
	status, _ = g.NodeStatus(ctx, sign)
	nodeErr, _ := g.NodeError(ctx, sign)
	assert.Equal(t, node.StatusFailed, status)
	assert.ErrorIs(t, nodeErr, boom)

	require.NoError(t, g.MarkSkipped(ctx, sign, errors.New("upstream")))
	status, _ = g.NodeStatus(ctx, sign)
	assert.Equal(t, node.StatusSkipped, status)
}
