// Package cache stores pipeline results between runs.
//
// Entries are opaque byte slices addressed by string keys. A [Keyer]
// derives keys from content hashes and the options that affect the result,
// so a key changes whenever the output could.
//
// Backends:
//   - [NullCache]: stores nothing (--no-cache, tests)
//   - [FileCache]: JSON envelopes under the XDG cache directory (CLI)
//   - [RedisCache]: a shared Redis instance (server deployments)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLSkeleton is how long skeletons stay cached. Propagation is
// deterministic, so entries only expire to bound disk use.
const TTLSkeleton = 7 * 24 * time.Hour

// NullCache stores nothing; every Get is a miss.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
