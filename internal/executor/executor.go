// Package executor defines the interface for running a build graph and the
// hooks observers use to follow a run.
package executor

import (
	"context"
	"time"
)

// Executor runs every node of a graph, honouring dependencies.
type Executor interface {
	Execute(ctx context.Context) error
}

// Options tune an executor.
type Options struct {
	// Workers is the number of nodes run concurrently. Defaults to 4.
	Workers int
	// Retries is how many times a node failing with a transient error is
	// re-run. Defaults to 2; negative disables retries.
	Retries int
	// Backoff is the base delay between attempts; attempt n waits n*Backoff.
	Backoff time.Duration
	// Observer receives node transitions. May be nil.
	Observer Observer
}

const (
	DefaultWorkers = 4
	DefaultRetries = 2
	DefaultBackoff = 500 * time.Millisecond
)

// WithDefaults fills zero values.
func (o Options) WithDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Retries == 0 {
		o.Retries = DefaultRetries
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}
