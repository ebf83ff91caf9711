package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/domain/entity"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

type purchaseRepository struct {
	*baseRepository[entity.Purchase]
}

func (r *purchaseRepository) Create(ctx context.Context, p *entity.Purchase) error {
	query := r.qb.Insert("purchases").
		Columns("book_id", "customer_email", "customer_name", "amount", "currency",
			"gateway_reference", "status", "download_token", "download_expires_at",
			"download_count", "max_downloads", "created_at", "updated_at").
		Values(p.BookID, p.CustomerEmail, p.CustomerName, p.Amount, p.Currency,
			p.GatewayReference, p.Status, p.DownloadToken, p.DownloadExpiresAt,
			p.DownloadCount, p.MaxDownloads, p.CreatedAt, p.UpdatedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	return r.db.Get(ctx, &p.ID, sql, args...)
}

func (r *purchaseRepository) GetByReference(ctx context.Context, reference string) (*entity.Purchase, error) {
	return r.getOneBy(ctx, squirrel.Eq{"gateway_reference": reference})
}

func (r *purchaseRepository) GetByToken(ctx context.Context, token string) (*entity.Purchase, error) {
	return r.getOneBy(ctx, squirrel.Eq{"download_token": token})
}

// Finalize performs the pending -> terminal transition as a compare-and-set
// at the storage layer, so the polling and webhook paths cannot race each
// other into overwriting a terminal status.
func (r *purchaseRepository) Finalize(ctx context.Context, reference string, status purchase.Status, transactionID *string) (bool, error) {
	query := r.qb.Update("purchases").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"gateway_reference": reference, "status": purchase.StatusPending})
	if transactionID != nil {
		query = query.Set("gateway_transaction_id", *transactionID)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	result, err := r.db.Execute(ctx, sql, args...)
	if err != nil {
		r.metrics.IncrementCounter("repository.purchases.errors", nil)
		return false, fmt.Errorf("finalize purchase: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		r.metrics.IncrementCounter("repository.purchases.finalized",
			map[string]string{"status": status.String()})
	}
	return rows > 0, nil
}

// ConsumeDownload increments the download counter only while it is below
// the ceiling and records the audit event, both in one transaction. Two
// concurrent consumers for the same token cannot push the count past
// max_downloads: the conditional update admits exactly the remaining
// number of callers.
func (r *purchaseRepository) ConsumeDownload(ctx context.Context, token string, ev *entity.DownloadEvent) (*entity.Purchase, error) {
	updateSQL, updateArgs, err := r.qb.Update("purchases").
		Set("download_count", squirrel.Expr("download_count + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"download_token": token, "status": purchase.StatusSuccessful}).
		Where(squirrel.Expr("download_count < max_downloads")).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var updated entity.Purchase
	err = r.db.Transaction(ctx, func(tx ports.Transaction) error {
		if err := tx.Get(ctx, &updated, updateSQL, updateArgs...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return r.classifyConsumeFailure(ctx, tx, token)
			}
			return fmt.Errorf("increment download count: %w", err)
		}

		ev.PurchaseID = updated.ID
		insertSQL, insertArgs, err := r.qb.Insert("download_events").
			Columns("purchase_id", "download_token", "ip_address", "user_agent", "downloaded_at").
			Values(ev.PurchaseID, ev.Token, ev.IPAddress, ev.UserAgent, ev.DownloadedAt).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}

		// If the event cannot be recorded the whole transaction rolls
		// back, so the increment is never committed without its audit row.
		return tx.Get(ctx, &ev.ID, insertSQL, insertArgs...)
	})
	if err != nil {
		return nil, err
	}

	r.metrics.IncrementCounter("repository.purchases.downloads_consumed", nil)
	return &updated, nil
}

// classifyConsumeFailure turns a zero-row conditional increment into the
// precise business error: unknown/unsuccessful token vs exhausted limit.
func (r *purchaseRepository) classifyConsumeFailure(ctx context.Context, tx ports.Transaction, token string) error {
	checkSQL, checkArgs, err := r.qb.Select("*").
		From("purchases").
		Where(squirrel.Eq{"download_token": token, "status": purchase.StatusSuccessful}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var existing entity.Purchase
	if err := tx.Get(ctx, &existing, checkSQL, checkArgs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrNotFound
		}
		return fmt.Errorf("check purchase: %w", err)
	}

	return purchase.ErrDownloadLimitReached
}
