package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes the key so the same request can be retried
	ReleaseIdempotency(ctx context.Context, key string) error

	// GetInterpretation returns a cached completion output for the given key
	GetInterpretation(ctx context.Context, key string) (string, bool, error)

	// SetInterpretation caches a completion output
	SetInterpretation(ctx context.Context, key, raw string, ttl time.Duration) error
}
