// Package cache stores short-lived backend responses, currently the
// autocomplete suggestions, in memory or in Redis.
package cache

import (
	"context"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with a TTL. A miss is
// (nil, false, nil).
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
