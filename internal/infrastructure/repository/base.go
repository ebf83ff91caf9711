package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Favour123/paystack-api/internal/application/ports"
)

type baseRepository[T any] struct {
	db      ports.Database
	logger  ports.Logger
	metrics ports.Metrics
	table   string
	qb      squirrel.StatementBuilderType
}

func newBaseRepository[T any](db ports.Database, logger ports.Logger, metrics ports.Metrics, table string) *baseRepository[T] {
	return &baseRepository[T]{
		db:      db,
		logger:  logger,
		metrics: metrics,
		table:   table,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get retrieves an entity by ID - using sqlx for auto-scanning
func (r *baseRepository[T]) Get(ctx context.Context, id int64) (*T, error) {
	var entity T

	r.metrics.IncrementCounter(fmt.Sprintf("repository.%s.get", r.table), nil)

	// Build query with Squirrel
	query := r.qb.
		Select("*").
		From(r.table).
		Where(squirrel.Eq{"id": id})

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	// Execute and scan with sqlx
	err = r.db.Get(ctx, &entity, sqlQuery, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get entity", "table", r.table, "error", err)
		r.metrics.IncrementCounter(fmt.Sprintf("repository.%s.errors", r.table), nil)
		return nil, fmt.Errorf("get entity: %w", err)
	}

	return &entity, nil
}

// getOneBy retrieves a single entity matching the given column value
func (r *baseRepository[T]) getOneBy(ctx context.Context, conditions squirrel.Eq) (*T, error) {
	var entity T

	sqlQuery, args, err := r.qb.
		Select("*").
		From(r.table).
		Where(conditions).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	err = r.db.Get(ctx, &entity, sqlQuery, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get entity", "table", r.table, "error", err)
		r.metrics.IncrementCounter(fmt.Sprintf("repository.%s.errors", r.table), nil)
		return nil, fmt.Errorf("get entity: %w", err)
	}

	return &entity, nil
}

// listWhere retrieves entities matching the given conditions in the given order
func (r *baseRepository[T]) listWhere(ctx context.Context, conditions squirrel.Sqlizer, orderBy string) ([]*T, error) {
	r.metrics.IncrementCounter(fmt.Sprintf("repository.%s.list", r.table), nil)

	query := r.qb.
		Select("*").
		From(r.table)
	if conditions != nil {
		query = query.Where(conditions)
	}
	if orderBy != "" {
		query = query.OrderBy(orderBy)
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	// Use sqlx for scanning multiple rows
	var entities []T
	err = r.db.Select(ctx, &entities, sqlQuery, args...)
	if err != nil {
		r.logger.Error("Failed to list entities", "table", r.table, "error", err)
		r.metrics.IncrementCounter(fmt.Sprintf("repository.%s.errors", r.table), nil)
		return nil, fmt.Errorf("list entities: %w", err)
	}

	result := make([]*T, len(entities))
	for i := range entities {
		result[i] = &entities[i]
	}

	return result, nil
}
