// Package metadata is a small key/value byte store kept in the client's
// SQLite database.
package metadata

import (
	"context"
)

// Repository stores opaque values under string keys.
//
// Get returns common.ErrorNotFound when the key has never been written.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
