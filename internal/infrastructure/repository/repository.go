package repository

import (
	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/domain/entity"
)

type Repositories struct {
	books          ports.BookRepository
	purchases      ports.PurchaseRepository
	downloadEvents ports.DownloadEventRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db ports.Database, logger ports.Logger, metrics ports.Metrics) *Repositories {
	return &Repositories{
		books:          newBookRepository(db, logger, metrics),
		purchases:      newPurchaseRepository(db, logger, metrics),
		downloadEvents: newDownloadEventRepository(db, logger, metrics),
	}
}

func newBookRepository(db ports.Database, logger ports.Logger, metrics ports.Metrics) ports.BookRepository {
	repo := &bookRepository{}
	repo.baseRepository = newBaseRepository[entity.Book](db, logger, metrics, "books")
	return repo
}

func newPurchaseRepository(db ports.Database, logger ports.Logger, metrics ports.Metrics) ports.PurchaseRepository {
	repo := &purchaseRepository{}
	repo.baseRepository = newBaseRepository[entity.Purchase](db, logger, metrics, "purchases")
	return repo
}

func newDownloadEventRepository(db ports.Database, logger ports.Logger, metrics ports.Metrics) ports.DownloadEventRepository {
	repo := &downloadEventRepository{}
	repo.baseRepository = newBaseRepository[entity.DownloadEvent](db, logger, metrics, "download_events")
	return repo
}

func (r *Repositories) Books() ports.BookRepository {
	return r.books
}

func (r *Repositories) Purchases() ports.PurchaseRepository {
	return r.purchases
}

func (r *Repositories) DownloadEvents() ports.DownloadEventRepository {
	return r.downloadEvents
}
