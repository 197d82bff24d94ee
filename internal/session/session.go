// Package session defines how a build graph is turned into a running
// execution. It hides whether the graph runs locally or elsewhere.
package session

import (
	"context"

	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/graph"
)

// SessionFactory creates an execution Session for a graph.
type SessionFactory interface {
	NewSession(ctx context.Context, g graph.Graph, opts executor.Options) (Session, error)
}

// Session is a single execution of a build graph.
type Session interface {
	GetExecutor() (executor.Executor, error)
	// Close releases resources held by the session, including an observer
	// that implements io.Closer.
	Close(ctx context.Context) error
}
