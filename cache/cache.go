// Package cache persists named collection snapshots for cold-start and
// offline use. It is a derived copy, never the source of truth while live
// subscriptions are active.
package cache

import "context"

// Driver identifies a concrete cache backend.
type Driver string

const (
	DriverRedis  Driver = "redis"  // hosted cache
	DriverSQLite Driver = "sqlite" // device-local file
	DriverMemory Driver = "memory" // tests
)

// Store is a key -> opaque snapshot store. Get returns (nil, nil) for a
// missing key; values are whole-snapshot replacements, never patched.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
