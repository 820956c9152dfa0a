// Package storage provides the key-value collaborators the client uses to
// persist its auth session between runs.
package storage

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when an operation is called with an empty key.
var ErrEmptyKey = errors.New("storage key cannot be empty")

// Storage is a minimal string key-value store.
//
// Implementations make no transactional promises: concurrent writers to the
// same key resolve as last write wins.
type Storage interface {
	// GetItem returns the value stored under key. ok is false when the key
	// is absent; err is reserved for failures of the backing medium.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}
