// Package cache provides the key-value stores used for cache-aside reads.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key-value cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}
