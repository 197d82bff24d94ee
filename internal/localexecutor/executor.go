// Package localexecutor runs a build graph in-process on a pool of worker
// goroutines.
package localexecutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/graph"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/scheduler"
)

// ErrUpstreamFailed is the reason recorded for skipped nodes.
var ErrUpstreamFailed = errors.New("skipped due to upstream failure")

// Executor runs ready nodes on a fixed number of workers. The first failure
// cancels the run: nodes already running finish, nothing new starts, and all
// dependents of the failed node are skipped.
type Executor struct {
	sch  scheduler.Scheduler
	g    graph.Graph
	opts executor.Options

	wg       sync.WaitGroup
	mu       sync.Mutex
	failures []failure
}

type failure struct {
	id  string
	err error
}

var _ executor.Executor = (*Executor)(nil)

// New creates a local executor for g.
func New(sch scheduler.Scheduler, g graph.Graph, opts executor.Options) *Executor {
	return &Executor{sch: sch, g: g, opts: opts.WithDefaults()}
}

// Execute runs the graph and returns the root-cause error, if any, wrapped
// with the ids of every node that failed on its own.
func (e *Executor) Execute(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	nodes := e.g.AllNodes(ctx)
	e.opts.Observer.OnPlan(ctx, len(nodes))
	if len(nodes) == 0 {
		logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Every node is queued at most once, so the buffer never fills.
	readyChan := make(chan *node.Node, len(nodes))
	e.wg.Add(len(nodes))

	roots := e.sch.Roots()
	logger.Debug("Found root nodes.", "count", len(roots))
	for _, n := range roots {
		readyChan <- n
	}

	logger.Debug("Starting worker pool.", "workers", e.opts.Workers)
	var workers sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			e.worker(runCtx, readyChan, cancel, id)
		}(i)
	}

	e.wg.Wait()
	close(readyChan)
	workers.Wait()
	logger.Debug("All nodes reached a final state.")

	e.mu.Lock()
	defer e.mu.Unlock()

	var rootCause error
	var failed []string
	for _, f := range e.failures {
		if errors.Is(f.err, context.Canceled) && ctx.Err() == nil {
			// Interrupted by our own fail-fast cancellation.
			continue
		}
		failed = append(failed, f.id)
		if rootCause == nil {
			rootCause = f.err
		}
	}
	if rootCause != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failed, ", "), rootCause)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (e *Executor) worker(ctx context.Context, readyChan chan *node.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)
	logger.Debug("Worker started.")

	for n := range readyChan {
		nodeCtx := ctxlog.With(ctx, "node", n.ID.String())

		if ctx.Err() != nil {
			logger.Warn("Context canceled, skipping node execution.", "node", n.ID.String())
			e.skip(nodeCtx, n, ctx.Err())
			e.skipDependents(nodeCtx, n)
			continue
		}

		_ = e.g.MarkRunning(nodeCtx, n.ID)
		e.opts.Observer.OnStart(nodeCtx, n)
		start := time.Now()
		output, attempts, err := e.run(nodeCtx, n)
		ev := executor.Event{Node: n, Attempts: attempts, Duration: time.Since(start)}

		if err != nil {
			logger.Error("Node execution failed.", "node", n.ID.String(), "attempts", attempts, "error", err)
			_ = e.g.MarkFailed(nodeCtx, n.ID, err)
			e.mu.Lock()
			e.failures = append(e.failures, failure{id: n.ID.String(), err: err})
			e.mu.Unlock()
			cancel()

			ev.Status, ev.Err = node.StatusFailed, err
			e.opts.Observer.OnFinish(nodeCtx, ev)
			e.skipDependents(nodeCtx, n)
			e.wg.Done()
			continue
		}

		_ = e.g.MarkCompleted(nodeCtx, n.ID, output)
		ev.Status = node.StatusCompleted
		e.opts.Observer.OnFinish(nodeCtx, ev)
		for _, dependent := range e.sch.Complete(n.ID) {
			logger.Debug("Unlocking dependent node.", "node", n.ID.String(), "dependent", dependent.ID.String())
			readyChan <- dependent
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.")
}

// run executes the node's action, retrying transient failures.
func (e *Executor) run(ctx context.Context, n *node.Node) (any, int, error) {
	logger := ctxlog.FromContext(ctx)
	for attempt := 1; ; attempt++ {
		output, err := n.Run(ctx)
		if err == nil {
			return output, attempt, nil
		}
		if !apkerr.IsTransient(err) || attempt > e.opts.Retries || ctx.Err() != nil {
			return nil, attempt, err
		}

		delay := time.Duration(attempt) * e.opts.Backoff
		logger.Warn("Transient failure, retrying node.", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil, attempt, err
		case <-time.After(delay):
		}
	}
}

// skip marks a node that was handed out but never run. The node's own
// WaitGroup slot is released here.
func (e *Executor) skip(ctx context.Context, n *node.Node, reason error) {
	_ = e.g.MarkSkipped(ctx, n.ID, reason)
	e.opts.Observer.OnFinish(ctx, executor.Event{Node: n, Status: node.StatusSkipped, Err: reason})
	e.wg.Done()
}

// skipDependents marks every transitive dependent of n as skipped.
func (e *Executor) skipDependents(ctx context.Context, n *node.Node) {
	logger := ctxlog.FromContext(ctx)
	reason := fmt.Errorf("%w of '%s'", ErrUpstreamFailed, n.ID.String())
	for _, dependent := range e.sch.Fail(n.ID) {
		logger.Warn("Skipping dependent node due to upstream failure.", "dependent", dependent.ID.String())
		e.skip(ctx, dependent, reason)
	}
}
