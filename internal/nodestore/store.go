// Package nodestore defines storage for the mutable execution state of build
// nodes: status, output and error.
package nodestore

import (
	"context"

	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
)

// Store records per-node execution state. Implementations must be safe for
// concurrent use by executor workers.
type Store interface {
	// SetStatus updates a node's status.
	SetStatus(ctx context.Context, id nodeid.Address, status node.Status) error
	// GetStatus returns the node's status, StatusPending if never set.
	GetStatus(ctx context.Context, id nodeid.Address) (node.Status, error)
	// SetOutput records the value returned by a node's action.
	SetOutput(ctx context.Context, id nodeid.Address, output any) error
	// GetOutput returns the recorded output, or nil.
	GetOutput(ctx context.Context, id nodeid.Address) (any, error)
	// SetError records why a node failed or was skipped.
	SetError(ctx context.Context, id nodeid.Address, nodeErr error) error
	// GetError returns the recorded error, or nil.
	GetError(ctx context.Context, id nodeid.Address) (error, error)
}
