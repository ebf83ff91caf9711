package ports

import (
	"context"
	"errors"

	"github.com/Favour123/paystack-api/internal/domain/entity"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("entity not found")

// BookRepository persists catalog items.
type BookRepository interface {
	Create(ctx context.Context, b *entity.Book) error
	Update(ctx context.Context, b *entity.Book) error
	// Get fetches a book regardless of its active flag. Purchases keep
	// referencing deactivated books, so this must keep resolving them.
	Get(ctx context.Context, id int64) (*entity.Book, error)
	// GetActive fetches a book only if it is active.
	GetActive(ctx context.Context, id int64) (*entity.Book, error)
	// ListActive returns active books, newest first.
	ListActive(ctx context.Context) ([]*entity.Book, error)
	// Deactivate flips the active flag; reports whether a row matched.
	Deactivate(ctx context.Context, id int64) (bool, error)
}

// PurchaseRepository persists purchase records and performs the
// concurrency-sensitive state changes as conditional updates.
type PurchaseRepository interface {
	Create(ctx context.Context, p *entity.Purchase) error
	GetByReference(ctx context.Context, reference string) (*entity.Purchase, error)
	GetByToken(ctx context.Context, token string) (*entity.Purchase, error)

	// Finalize applies the pending -> status transition as a single
	// conditional update (WHERE status = 'pending'). It reports whether
	// this call performed the transition; false means the record was
	// already terminal and the caller must re-read it.
	Finalize(ctx context.Context, reference string, status purchase.Status, transactionID *string) (bool, error)

	// ConsumeDownload atomically increments the download count (only while
	// below the ceiling) and appends the download event in one
	// transaction. Returns the purchase as of after the increment, or
	// ErrDownloadLimitReached when the conditional increment matched no row.
	ConsumeDownload(ctx context.Context, token string, ev *entity.DownloadEvent) (*entity.Purchase, error)
}

// DownloadEventRepository reads the append-only download audit log.
type DownloadEventRepository interface {
	ListByPurchase(ctx context.Context, purchaseID int64) ([]*entity.DownloadEvent, error)
}

// Repositories bundles all repositories behind one constructor-injected
// dependency.
type Repositories interface {
	Books() BookRepository
	Purchases() PurchaseRepository
	DownloadEvents() DownloadEventRepository
}
