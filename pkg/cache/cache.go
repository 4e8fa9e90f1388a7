// Package cache stores computed layout geometry between runs.
//
// Layouts are a pure function of the subgraph, the node sizes and the
// layout options, so their geometry can be reused across CLI invocations
// and across recomputations that land on an identical subgraph. Keys are
// content hashes built with [LayoutKey]; values are opaque bytes.
//
// Implementations:
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [MemoryCache]: process-local map (TUI sessions, tests)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
