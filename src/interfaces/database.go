package interfaces

import "context"

// -----------------------------------------------------------------------------
// IKeyValueStore defines the contract for the durable string store.
// -----------------------------------------------------------------------------

type IKeyValueStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Get returns the value stored under key. ok is false when the key was never written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// -----------------------------------------------------------------------------

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value string) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
