package storage

import (
	"context"
	"time"
)

// NopCache is used when Redis is disabled: every request counts as new and
// nothing is cached.
type NopCache struct{}

func (NopCache) SetIdempotency(ctx context.Context, key string) (bool, error) { return true, nil }

func (NopCache) ReleaseIdempotency(ctx context.Context, key string) error { return nil }

func (NopCache) GetInterpretation(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (NopCache) SetInterpretation(ctx context.Context, key, raw string, ttl time.Duration) error {
	return nil
}
