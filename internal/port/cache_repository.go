package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ClearIdempotency removes the key so a failed request can be retried
	ClearIdempotency(ctx context.Context, key string) error

	// AcquireLock takes a named lock with a TTL, returns the owner token on success
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)

	// ReleaseLock deletes the lock only if token still owns it
	ReleaseLock(ctx context.Context, name, token string) error
}
