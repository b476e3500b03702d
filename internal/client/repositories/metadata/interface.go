// Package metadata is the local key/value store backing the persisted
// session (token and user) of the grocery CLI.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns common.ErrNotFound
// for absent keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
