package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a purchasable catalog item. The downloadable asset itself lives
// in object storage; FileKey is its locator and is never exposed through
// public catalog responses.
type Book struct {
	ID          int64           `db:"id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	ImageURL    string          `db:"image_url"`
	FileKey     string          `db:"file_key"`
	Rating      int             `db:"rating"`
	Ages        string          `db:"ages"`
	IsActive    bool            `db:"is_active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func NewBook(title, description string, price decimal.Decimal, imageURL, fileKey, ages string, rating int) *Book {
	now := time.Now().UTC()
	return &Book{
		Title:       title,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
		FileKey:     fileKey,
		Rating:      rating,
		Ages:        ages,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Deactivate soft-deletes the book. Purchases keep referencing it, so the
// row itself is never removed.
func (b *Book) Deactivate() {
	b.IsActive = false
	b.UpdatedAt = time.Now().UTC()
}

// PriceMatches reports whether the offered amount equals the listed price.
func (b *Book) PriceMatches(amount decimal.Decimal) bool {
	return b.Price.Equal(amount)
}
