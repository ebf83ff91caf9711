package ports

import (
	"context"
	"time"
)

// RateLimiter bounds request rates per caller. Allow reports whether the
// caller identified by key may proceed under the given limit and window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
