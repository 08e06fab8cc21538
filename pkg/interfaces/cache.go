package interfaces

import (
	"context"
	"time"
)

// KeyValueCache is the persistent cache shared by renderers and services.
// Invalidation is coarse: writers bump a scope version and readers fold the
// current version into their keys, so stale entries are never read again.
type KeyValueCache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A zero ttl keeps the value until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// BumpVersion increments the version counter for scope and returns the new value.
	BumpVersion(ctx context.Context, scope string) (int64, error)
	// Version returns the current version counter for scope.
	Version(ctx context.Context, scope string) (int64, error)
}
