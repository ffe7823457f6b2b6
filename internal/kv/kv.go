// Package kv defines the byte store the transaction list is persisted into.
// It plays the role of browser local storage: string keys, opaque values,
// whole-value overwrite on every write.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored under a key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a minimal key-value byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
