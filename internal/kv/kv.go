package kv

import "time"

// Store is the key-value contract the presence layer runs on. Backed by
// redis in production, by a map in tests.
type Store interface {
	// Set stores a key-value pair with optional expiration duration.
	Set(key, value string, exp time.Duration) error
	// Get retrieves the value for key, or ErrKeyNotFound.
	Get(key string) (string, error)
	// Del removes the key.
	Del(key string) error
	// TTL reports the remaining lifetime of key, negative when absent.
	TTL(key string) (time.Duration, error)
}
