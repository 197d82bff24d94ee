package notify

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/node"
)

// MultiObserver fans every event out to several observers in order.
type MultiObserver struct {
	observers []executor.Observer
}

var (
	_ executor.Observer = (*MultiObserver)(nil)
	_ io.Closer         = (*MultiObserver)(nil)
)

// Multi combines observers, dropping nil ones.
func Multi(observers ...executor.Observer) *MultiObserver {
	m := &MultiObserver{}
	for _, o := range observers {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
	return m
}

func (m *MultiObserver) OnPlan(ctx context.Context, total int) {
	for _, o := range m.observers {
		o.OnPlan(ctx, total)
	}
}

func (m *MultiObserver) OnStart(ctx context.Context, n *node.Node) {
	for _, o := range m.observers {
		o.OnStart(ctx, n)
	}
}

func (m *MultiObserver) OnFinish(ctx context.Context, ev executor.Event) {
	for _, o := range m.observers {
		o.OnFinish(ctx, ev)
	}
}

// Close closes every observer that is an io.Closer.
func (m *MultiObserver) Close() error {
	var errs []error
	for _, o := range m.observers {
		if c, ok := o.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
