package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Favour123/paystack-api/internal/domain/entity"
)

type bookRepository struct {
	*baseRepository[entity.Book]
}

func (r *bookRepository) Create(ctx context.Context, b *entity.Book) error {
	query := r.qb.Insert("books").
		Columns("title", "description", "price", "image_url", "file_key",
			"rating", "ages", "is_active", "created_at", "updated_at").
		Values(b.Title, b.Description, b.Price, b.ImageURL, b.FileKey,
			b.Rating, b.Ages, b.IsActive, b.CreatedAt, b.UpdatedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	return r.db.Get(ctx, &b.ID, sql, args...)
}

func (r *bookRepository) Update(ctx context.Context, b *entity.Book) error {
	b.UpdatedAt = time.Now().UTC()

	query := r.qb.Update("books").
		Set("title", b.Title).
		Set("description", b.Description).
		Set("price", b.Price).
		Set("image_url", b.ImageURL).
		Set("file_key", b.FileKey).
		Set("rating", b.Rating).
		Set("ages", b.Ages).
		Set("is_active", b.IsActive).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"id": b.ID})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	_, err = r.db.Execute(ctx, sql, args...)
	return err
}

func (r *bookRepository) GetActive(ctx context.Context, id int64) (*entity.Book, error) {
	return r.getOneBy(ctx, squirrel.Eq{"id": id, "is_active": true})
}

func (r *bookRepository) ListActive(ctx context.Context) ([]*entity.Book, error) {
	return r.listWhere(ctx, squirrel.Eq{"is_active": true}, "created_at DESC")
}

func (r *bookRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	query := r.qb.Update("books").
		Set("is_active", false).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	result, err := r.db.Execute(ctx, sql, args...)
	if err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
