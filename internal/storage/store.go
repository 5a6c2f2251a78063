// Package storage is the only I/O boundary of the tracker: a durable
// key-value byte store holding the whole task collection under one key.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrStore       = errors.New("store failure")
	ErrStoreClosed = errors.New("store closed")
)

// EmptyCollection is what an uninitialized key is seeded with.
var EmptyCollection = []byte("[]")

// Store persists one opaque value. Load reports found=false when the key has
// never been written.
type Store interface {
	Load(ctx context.Context) (data []byte, found bool, err error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// HealthChecker is implemented by stores backed by a remote service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Initialize seeds the key with an empty collection when nothing is stored.
// Calling it again is a no-op.
func Initialize(ctx context.Context, store Store) error {
	_, found, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if found {
		return nil
	}
	if err := store.Save(ctx, EmptyCollection); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	return nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
