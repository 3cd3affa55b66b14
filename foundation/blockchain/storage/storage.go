// Package storage defines the key/value persistence the node uses for its
// chain snapshot and wallet keys.
package storage

import "errors"

// ErrNotFound is returned when a key has never been saved.
var ErrNotFound = errors.New("key not found")

// Storage interface represents the behavior required to be implemented by
// any package providing support for persisting node state.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}
