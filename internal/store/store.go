package store

import (
	"context"
	"time"
)

// Store tracks which tickets are still fresh (unused, unexpired).
// Entries self-expire; expired means absent. Store errors must
// propagate: validation fails closed when the backend is unreachable.
type Store interface {
	// MarkUnused records a freshly issued ticket under its derived key.
	MarkUnused(ctx context.Context, key, serialized string, ttl time.Duration) error

	// Consume atomically removes the entry and reports whether it was
	// present and unexpired. Two concurrent consumes of one key must
	// not both return true; this is the single concurrency hazard in
	// the ticket lifecycle (a race here is a replay).
	Consume(ctx context.Context, key string) (bool, error)

	// MarkUsed removes the entry. Deleting an absent key is not an
	// error.
	MarkUsed(ctx context.Context, key string) error

	Close() error
}
