package ports

import (
	"context"
	"time"
)

// ObjectStorage issues short-lived download URLs for stored book assets.
// The files themselves are written out-of-band; this system only reads.
type ObjectStorage interface {
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
}
