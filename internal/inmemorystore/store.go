// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of nodestore.Store. A store lives for a single build.
package inmemorystore

import (
	"context"
	"sync"

	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/nodestore"
)

type record struct {
	status node.Status
	output any
	err    error
}

// Store keeps one record per node key. Every node's state is independent, so
// sync.Map is used and each record is replaced rather than mutated.
type Store struct {
	mu      sync.Mutex // serialises read-modify-write of a record
	records sync.Map   // node ID string -> record
}

var _ nodestore.Store = (*Store)(nil)

// New creates an empty node state store.
func New() *Store {
	return &Store{}
}

func (s *Store) load(key string) record {
	if v, ok := s.records.Load(key); ok {
		return v.(record)
	}
	return record{status: node.StatusPending}
}

func (s *Store) update(id nodeid.Address, fn func(*record)) {
	key := id.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.load(key)
	fn(&r)
	s.records.Store(key, r)
}

func (s *Store) SetStatus(ctx context.Context, id nodeid.Address, status node.Status) error {
	s.update(id, func(r *record) { r.status = status })
	return nil
}

func (s *Store) GetStatus(ctx context.Context, id nodeid.Address) (node.Status, error) {
	return s.load(id.String()).status, nil
}

func (s *Store) SetOutput(ctx context.Context, id nodeid.Address, output any) error {
	s.update(id, func(r *record) { r.output = output })
	return nil
}

func (s *Store) GetOutput(ctx context.Context, id nodeid.Address) (any, error) {
	return s.load(id.String()).output, nil
}

func (s *Store) SetError(ctx context.Context, id nodeid.Address, nodeErr error) error {
	s.update(id, func(r *record) { r.err = nodeErr })
	return nil
}

func (s *Store) GetError(ctx context.Context, id nodeid.Address) (error, error) {
	return s.load(id.String()).err, nil
}
