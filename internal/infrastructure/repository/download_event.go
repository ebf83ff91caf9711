package repository

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/Favour123/paystack-api/internal/domain/entity"
)

type downloadEventRepository struct {
	*baseRepository[entity.DownloadEvent]
}

func (r *downloadEventRepository) ListByPurchase(ctx context.Context, purchaseID int64) ([]*entity.DownloadEvent, error) {
	return r.listWhere(ctx, squirrel.Eq{"purchase_id": purchaseID}, "downloaded_at DESC")
}
