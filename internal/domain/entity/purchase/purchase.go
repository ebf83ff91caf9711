package purchase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one payment attempt for a book plus the download entitlement
// issued with it. GatewayReference is the handle shared with the payment
// gateway; DownloadToken is the bearer credential handed to the customer
// after a successful charge.
type Purchase struct {
	ID                   int64           `db:"id"`
	BookID               int64           `db:"book_id"`
	CustomerEmail        string          `db:"customer_email"`
	CustomerName         string          `db:"customer_name"`
	Amount               decimal.Decimal `db:"amount"`
	Currency             string          `db:"currency"`
	GatewayReference     string          `db:"gateway_reference"`
	GatewayTransactionID *string         `db:"gateway_transaction_id"`
	Status               Status          `db:"status"`
	DownloadToken        string          `db:"download_token"`
	DownloadExpiresAt    time.Time       `db:"download_expires_at"`
	DownloadCount        int             `db:"download_count"`
	MaxDownloads         int             `db:"max_downloads"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

// NewPurchase creates a pending purchase with a freshly generated download
// token. The token is generated exactly once here and is stable for the
// record's life.
func NewPurchase(bookID int64, email, name string, amount decimal.Decimal, currency, reference string, tokenTTL time.Duration, maxDownloads int) *Purchase {
	now := time.Now().UTC()
	return &Purchase{
		BookID:            bookID,
		CustomerEmail:     email,
		CustomerName:      name,
		Amount:            amount,
		Currency:          currency,
		GatewayReference:  reference,
		Status:            StatusPending,
		DownloadToken:     NewDownloadToken(),
		DownloadExpiresAt: now.Add(tokenTTL),
		DownloadCount:     0,
		MaxDownloads:      maxDownloads,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NewDownloadToken returns a 64-character hex bearer token.
func NewDownloadToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}

// NewReference returns a locally generated payment reference, unique per
// purchase attempt.
func NewReference() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<48))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return fmt.Sprintf("HLP_%d_%012x", time.Now().UnixMilli(), n.Int64())
}

// ============================================================================
// BUSINESS METHODS (State transitions with rules)
// ============================================================================

// MarkSuccessful transitions the purchase to successful and records the
// gateway transaction id. Only valid from pending.
func (p *Purchase) MarkSuccessful(transactionID string) error {
	if p.Status.IsTerminal() {
		return ErrAlreadyFinalized
	}

	p.Status = StatusSuccessful
	p.GatewayTransactionID = &transactionID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions the purchase to failed. Only valid from pending.
func (p *Purchase) MarkFailed() error {
	if p.Status.IsTerminal() {
		return ErrAlreadyFinalized
	}

	p.Status = StatusFailed
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ============================================================================
// QUERY METHODS (Business logic queries)
// ============================================================================

// IsSuccessful reports whether the payment completed.
func (p *Purchase) IsSuccessful() bool {
	return p.Status == StatusSuccessful
}

// IsExpired reports whether the download window has passed at instant now.
func (p *Purchase) IsExpired(now time.Time) bool {
	return now.After(p.DownloadExpiresAt)
}

// DownloadsRemaining returns how many downloads the entitlement still allows.
func (p *Purchase) DownloadsRemaining() int {
	remaining := p.MaxDownloads - p.DownloadCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CheckEntitlement validates the download entitlement at instant now.
// Checks run in a fixed order: status, expiry, then count ceiling.
func (p *Purchase) CheckEntitlement(now time.Time) error {
	if !p.IsSuccessful() {
		return ErrNotSuccessful
	}
	if p.IsExpired(now) {
		return ErrDownloadExpired
	}
	if p.DownloadCount >= p.MaxDownloads {
		return ErrDownloadLimitReached
	}
	return nil
}
