package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/domain/entity"
	"github.com/Favour123/paystack-api/internal/domain/entity/book"
)

// BookInput carries the writable fields of a catalog item.
type BookInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	FileKey     string          `json:"fileKey"`
	Ages        string          `json:"ages"`
	Rating      int             `json:"rating"`
	IsActive    *bool           `json:"isActive"`
}

func (in *BookInput) validate() error {
	v := &validator{}
	v.requireString("title", in.Title, 2, 100)
	v.requireString("description", in.Description, 10, 500)
	if in.Price.LessThan(decimal.Zero) {
		v.add("price", "must not be negative")
	}
	if in.Rating != 0 {
		v.requireRating("rating", in.Rating)
	}
	v.requireAgeRange("ages", in.Ages)
	return v.err()
}

// CatalogService implements the book catalog operations. Reads only ever
// see active books; writes resolve any book so deactivated entries stay
// editable.
type CatalogService struct {
	repos   ports.Repositories
	logger  ports.Logger
	metrics ports.Metrics
}

func NewCatalogService(repos ports.Repositories, logger ports.Logger, metrics ports.Metrics) *CatalogService {
	return &CatalogService{
		repos:   repos,
		logger:  logger.WithFields(map[string]interface{}{"component": "catalog"}),
		metrics: metrics,
	}
}

// List returns all active books, newest first.
func (s *CatalogService) List(ctx context.Context) ([]*entity.Book, error) {
	books, err := s.repos.Books().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return books, nil
}

// Get returns a single active book.
func (s *CatalogService) Get(ctx context.Context, id int64) (*entity.Book, error) {
	b, err := s.repos.Books().GetActive(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("fetching book %d: %w", id, err)
	}
	return b, nil
}

// Create adds a book to the catalog. New books start active unless the
// input says otherwise.
func (s *CatalogService) Create(ctx context.Context, in BookInput) (*entity.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rating := in.Rating
	if rating == 0 {
		rating = 5
	}

	b := book.NewBook(
		strings.TrimSpace(in.Title),
		strings.TrimSpace(in.Description),
		in.Price,
		in.ImageURL,
		in.FileKey,
		in.Ages,
		rating,
	)
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}

	if err := s.repos.Books().Create(ctx, b); err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	s.logger.Info("book created", "book_id", b.ID, "title", b.Title)
	s.metrics.IncrementCounter("catalog.books.created", nil)
	return b, nil
}

// Update replaces the writable fields of an existing book. Missing books
// are a terminal condition, not a trigger for upsert.
func (s *CatalogService) Update(ctx context.Context, id int64, in BookInput) (*entity.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	b, err := s.repos.Books().Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("fetching book %d: %w", id, err)
	}

	b.Title = strings.TrimSpace(in.Title)
	b.Description = strings.TrimSpace(in.Description)
	b.Price = in.Price
	b.ImageURL = in.ImageURL
	if in.FileKey != "" {
		b.FileKey = in.FileKey
	}
	b.Ages = in.Ages
	if in.Rating != 0 {
		b.Rating = in.Rating
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}

	if err := s.repos.Books().Update(ctx, b); err != nil {
		return nil, fmt.Errorf("updating book %d: %w", id, err)
	}

	s.logger.Info("book updated", "book_id", b.ID)
	return b, nil
}

// Deactivate soft-deletes a book. The row survives so existing purchases
// keep resolving their title and asset.
func (s *CatalogService) Deactivate(ctx context.Context, id int64) error {
	ok, err := s.repos.Books().Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("deactivating book %d: %w", id, err)
	}
	if !ok {
		return ErrBookNotFound
	}

	s.logger.Info("book deactivated", "book_id", id)
	s.metrics.IncrementCounter("catalog.books.deactivated", nil)
	return nil
}
