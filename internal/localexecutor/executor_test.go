package localexecutor

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/graph"
	"github.com/specialistvlad/nativeapk/internal/inmemorystore"
	"github.com/specialistvlad/nativeapk/internal/inmemorytopology"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures the order in which actions ran.
type recorder struct {
	mu  sync.Mutex
	ran []string
}

func (r *recorder) action(id string, err error) node.Action {
	return func(context.Context) (any, error) {
		r.mu.Lock()
		r.ran = append(r.ran, id)
		r.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return id + ".out", nil
	}
}

func (r *recorder) index(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.ran {
		if v == id {
			return i
		}
	}
	return -1
}

// eventLog is an executor.Observer that keeps final statuses.
type eventLog struct {
	mu       sync.Mutex
	total    int
	started  int
	finished map[string]executor.Event
}

func (l *eventLog) OnPlan(_ context.Context, total int) { l.total = total }
func (l *eventLog) OnStart(context.Context, *node.Node) {
	l.mu.Lock()
	l.started++
	l.mu.Unlock()
}
func (l *eventLog) OnFinish(_ context.Context, ev executor.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finished == nil {
		l.finished = make(map[string]executor.Event)
	}
	l.finished[ev.Node.ID.String()] = ev
}

type nodeDef struct {
	id     string
	deps   []string
	action node.Action
}

func buildGraph(t *testing.T, defs []nodeDef) *graph.Manager {
	t.Helper()
	ctx := context.Background()
	topo := inmemorytopology.New()
	for _, s := range defs {
		require.NoError(t, topo.AddNode(ctx, &node.Node{ID: nodeid.MustParse(s.id), Action: s.action}))
	}
	for _, s := range defs {
		for _, d := range s.deps {
			require.NoError(t, topo.AddDependency(ctx, nodeid.MustParse(d), nodeid.MustParse(s.id)))
		}
	}
	return graph.New(topo, inmemorystore.New())
}

func execute(t *testing.T, g *graph.Manager, opts executor.Options) error {
	t.Helper()
	ctx := context.Background()
	sch, err := scheduler.New(ctx, g)
	require.NoError(t, err)
	return New(sch, g, opts).Execute(ctx)
}

func status(t *testing.T, g *graph.Manager, id string) node.Status {
	t.Helper()
	s, err := g.NodeStatus(context.Background(), nodeid.MustParse(id))
	require.NoError(t, err)
	return s
}

func TestExecute_RespectsDependencies(t *testing.T) {
	rec := &recorder{}
	defs := []nodeDef{
		{id: "apk.resources", action: rec.action("apk.resources", nil)},
		{id: "apk.base", deps: []string{"apk.resources"}, action: rec.action("apk.base", nil)},
		{id: "lib.arm.compile", action: rec.action("lib.arm.compile", nil)},
		{id: "lib.arm.placeholder", action: rec.action("lib.arm.placeholder", nil)},
		{id: "inject.arm.placeholder", deps: []string{"apk.base", "lib.arm.placeholder"}, action: rec.action("inject.arm.placeholder", nil)},
		{id: "inject.arm.library", deps: []string{"apk.base", "lib.arm.compile", "inject.arm.placeholder"}, action: rec.action("inject.arm.library", nil)},
		{id: "apk.sign", deps: []string{"inject.arm.placeholder", "inject.arm.library"}, action: rec.action("apk.sign", nil)},
	}
	g := buildGraph(t, defs)
	events := &eventLog{}

	require.NoError(t, execute(t, g, executor.Options{Workers: 3, Observer: events}))

	for _, s := range defs {
		assert.Equal(t, node.StatusCompleted, status(t, g, s.id), s.id)
		for _, d := range s.deps {
			assert.Less(t, rec.index(d), rec.index(s.id), "%s must run after %s", s.id, d)
		}
	}
	out, err := g.NodeOutput(context.Background(), nodeid.MustParse("apk.sign"))
	require.NoError(t, err)
	assert.Equal(t, "apk.sign.out", out)
	assert.Equal(t, len(defs), events.total)
	assert.Equal(t, len(defs), events.started)
	assert.Len(t, events.finished, len(defs))
}

func TestExecute_FailureSkipsDependents(t *testing.T) {
	rec := &recorder{}
	toolErr := apkerr.Process("zipinject", 3, "cannot open archive", nil)
	defs := []nodeDef{
		{id: "apk.base", action: rec.action("apk.base", nil)},
		{id: "inject.x86.library", deps: []string{"apk.base"}, action: rec.action("inject.x86.library", toolErr)},
		{id: "apk.sign", deps: []string{"inject.x86.library"}, action: rec.action("apk.sign", nil)},
	}
	g := buildGraph(t, defs)
	events := &eventLog{}

	err := execute(t, g, executor.Options{Workers: 2, Observer: events})
	require.Error(t, err)
	assert.ErrorIs(t, err, toolErr)
	assert.Contains(t, err.Error(), "execution failed for inject.x86.library")

	assert.Equal(t, node.StatusCompleted, status(t, g, "apk.base"))
	assert.Equal(t, node.StatusFailed, status(t, g, "inject.x86.library"))
	assert.Equal(t, node.StatusSkipped, status(t, g, "apk.sign"))
	assert.Equal(t, -1, rec.index("apk.sign"), "sign must never run")

	reason, _ := g.NodeError(context.Background(), nodeid.MustParse("apk.sign"))
	assert.ErrorIs(t, reason, ErrUpstreamFailed)
	assert.Equal(t, node.StatusSkipped, events.finished["apk.sign"].Status)
}

func TestExecute_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	flaky := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, apkerr.IO("rename", "demo.apk", fs.ErrExist)
		}
		return "ok", nil
	}
	g := buildGraph(t, []nodeDef{{id: "apk.base", action: flaky}})
	events := &eventLog{}

	require.NoError(t, execute(t, g, executor.Options{Workers: 1, Backoff: time.Millisecond, Observer: events}))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, events.finished["apk.base"].Attempts)
}

func TestExecute_DoesNotRetryProcessErrors(t *testing.T) {
	var calls atomic.Int32
	failing := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, apkerr.Process("aapt package", 1, "", nil)
	}
	g := buildGraph(t, []nodeDef{{id: "apk.base", action: failing}})

	err := execute(t, g, executor.Options{Workers: 1, Retries: 5, Backoff: time.Millisecond})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecute_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	alwaysIO := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, apkerr.IO("write", "demo.apk", fs.ErrPermission)
	}
	g := buildGraph(t, []nodeDef{{id: "apk.base", action: alwaysIO}})

	err := execute(t, g, executor.Options{Workers: 1, Retries: 2, Backoff: time.Millisecond})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecute_FailFastCancelsPendingWork(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	defs := []nodeDef{
		{id: "a.fail", action: rec.action("a.fail", boom)},
		{id: "b.slow", action: func(ctx context.Context) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
		{id: "b.after", deps: []string{"b.slow"}, action: rec.action("b.after", nil)},
	}
	g := buildGraph(t, defs)

	err := execute(t, g, executor.Options{Workers: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, err.Error(), "b.slow")
	assert.Equal(t, node.StatusSkipped, status(t, g, "b.after"))
	assert.Equal(t, -1, rec.index("b.after"))
}

func TestExecute_EmptyGraph(t *testing.T) {
	g := buildGraph(t, nil)
	assert.NoError(t, execute(t, g, executor.Options{}))
}
