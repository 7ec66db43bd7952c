// Package cache stores solved layouts and rendered artifacts.
//
// Solving a proteomap is expensive: every branch runs up to fifteen
// randomised attempts. The pipeline therefore keys each (dataset,
// condition) layout by a hash of its input rows and solver options and
// stores the encoded GeoJSON in a [Cache].
//
// Backends:
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [SQLiteCache]: a single SQLite database (modernc.org/sqlite, no cgo)
//   - [RedisCache]: a shared Redis instance for batch runs on several hosts
//   - [NullCache]: caching disabled
//
// [Open] picks a backend by name.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}
