// Package store defines the aggregate persistence interface. Each subsystem
// (digest configs, digests, entries) defines its own store interface. The
// composite Store composes them all. Backends: Postgres, Bun, Mongo, and
// Memory; Redis provides the advisory backfill lock.
package store

import (
	"context"

	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
)

// Store is the aggregate persistence interface.
// Each subsystem store is a composable interface; a single backend
// (postgres, bun, mongo, memory) implements all of them.
type Store interface {
	digest.ConfigStore
	digest.Store
	entry.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
