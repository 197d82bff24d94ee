// Package localsession wires an in-process scheduler and worker pool into a
// session.Session.
package localsession

import (
	"context"
	"io"

	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/graph"
	"github.com/specialistvlad/nativeapk/internal/localexecutor"
	"github.com/specialistvlad/nativeapk/internal/scheduler"
	"github.com/specialistvlad/nativeapk/internal/session"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct{}

var _ session.SessionFactory = (*SessionFactory)(nil)

// NewSession builds the scheduler and executor for g.
func (f *SessionFactory) NewSession(ctx context.Context, g graph.Graph, opts executor.Options) (session.Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Creating local session.")

	sched, err := scheduler.New(ctx, g)
	if err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	exec := localexecutor.New(sched, g, opts)

	logger.Debug("Local session created.", "workers", opts.Workers, "retries", opts.Retries)
	return &Session{executor: exec, observer: opts.Observer}, nil
}

// Session is a local execution session.
type Session struct {
	executor executor.Executor
	observer executor.Observer
}

func (s *Session) GetExecutor() (executor.Executor, error) {
	return s.executor, nil
}

func (s *Session) Close(ctx context.Context) error {
	if c, ok := s.observer.(io.Closer); ok {
		ctxlog.FromContext(ctx).Debug("Closing session observer.")
		return c.Close()
	}
	return nil
}
