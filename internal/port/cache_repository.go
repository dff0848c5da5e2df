package port

import "context"

type IdempotencyStore interface {
	// SetIdempotency claims a key, returns false if it is already claimed
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a key (for rollback when the claimed work failed)
	ReleaseIdempotency(ctx context.Context, key string) error

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
}
