// Package cache stores serialized list responses under keys derived from the
// raw request query string.
package cache

import "context"

// Namespace prefixes every list cache key.
const Namespace = "psalms_data_"

// Key derives the cache key for a list request. The raw query is appended
// unmodified, so reordered parameters produce distinct keys.
func Key(rawQuery string) string {
	return Namespace + rawQuery
}

// Store is a byte-oriented cache with a store-wide expiry.
// Writers for the same key are expected to produce identical payloads, so
// concurrent Set calls are last-writer-wins without coordination.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
