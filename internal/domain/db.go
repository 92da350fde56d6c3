package domain

import "context"

// Database defines lifecycle operations for the durable storage backend.
// SQLite owns migrations; Redis has none and returns nil.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// Storage is durable key/value persistence scoped to a namespace, one
// namespace per client. It stands in for browser local storage.
type Storage interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace string, keys ...string) error
}
