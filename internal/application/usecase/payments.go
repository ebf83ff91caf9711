package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/domain/entity"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

// PaymentOptions are the entitlement and currency defaults stamped onto
// new purchases.
type PaymentOptions struct {
	Currency     string
	TokenTTL     time.Duration
	MaxDownloads int
	QueueTarget  string
}

// PaymentService drives the purchase lifecycle: initialize against the
// gateway, verify the outcome, and report status. Finalization races with
// the webhook path; both funnel through the repository's conditional
// update so only one writer ever lands the terminal state.
type PaymentService struct {
	repos   ports.Repositories
	gateway ports.PaymentGateway
	queue   ports.Queue
	opts    PaymentOptions
	logger  ports.Logger
	metrics ports.Metrics
	now     func() time.Time
}

func NewPaymentService(repos ports.Repositories, gateway ports.PaymentGateway, queue ports.Queue, opts PaymentOptions, logger ports.Logger, metrics ports.Metrics) *PaymentService {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	return &PaymentService{
		repos:   repos,
		gateway: gateway,
		queue:   queue,
		opts:    opts,
		logger:  logger.WithFields(map[string]interface{}{"component": "payments"}),
		metrics: metrics,
		now:     time.Now,
	}
}

// InitializeInput is a request to start a purchase.
type InitializeInput struct {
	Email        string          `json:"email"`
	Amount       decimal.Decimal `json:"amount"`
	BookID       int64           `json:"bookId"`
	CustomerName string          `json:"customerName"`
}

func (in *InitializeInput) validate() error {
	v := &validator{}
	v.requireEmail("email", in.Email)
	v.requirePositiveAmount("amount", in.Amount)
	if in.BookID <= 0 {
		v.add("bookId", "is required")
	}
	v.requireString("customerName", in.CustomerName, 2, 100)
	return v.err()
}

// ItemSummary is the public projection of a book inside payment
// responses. It never carries the asset locator.
type ItemSummary struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
}

func summarize(b *entity.Book) ItemSummary {
	return ItemSummary{ID: b.ID, Title: b.Title, Price: b.Price, ImageURL: b.ImageURL}
}

// InitializeResult is the redirect handle returned to the storefront.
type InitializeResult struct {
	AuthorizationURL string      `json:"authorizationUrl"`
	AccessCode       string      `json:"accessCode"`
	Reference        string      `json:"reference"`
	Book             ItemSummary `json:"book"`
}

// Initialize validates the request against the live catalog price, starts
// a charge at the gateway, and only then persists the pending purchase.
// A gateway refusal leaves no record behind.
func (s *PaymentService) Initialize(ctx context.Context, in InitializeInput) (*InitializeResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	b, err := s.repos.Books().GetActive(ctx, in.BookID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("fetching book %d: %w", in.BookID, err)
	}

	// The client-supplied amount is advisory only; it must equal the
	// listed price exactly or the attempt is refused.
	if !b.PriceMatches(in.Amount) {
		s.logger.Warn("amount mismatch on initialize",
			"book_id", b.ID,
			"listed", b.Price.String(),
			"offered", in.Amount.String(),
		)
		s.metrics.IncrementCounter("payments.initialize.amount_mismatch", nil)
		return nil, ErrAmountMismatch
	}

	reference := purchase.NewReference()

	auth, err := s.gateway.Initialize(ctx, ports.InitializeTransaction{
		Email:     email,
		Amount:    b.Price,
		Currency:  s.opts.Currency,
		Reference: reference,
		Metadata: map[string]string{
			"book_id":       strconv.FormatInt(b.ID, 10),
			"book_title":    b.Title,
			"customer_name": in.CustomerName,
		},
	})
	if err != nil {
		s.logger.Error("gateway initialize failed", "reference", reference, "error", err)
		s.metrics.IncrementCounter("payments.initialize.gateway_error", nil)
		return nil, fmt.Errorf("%w: %v", ErrGatewayRejected, err)
	}

	p := purchase.NewPurchase(b.ID, email, in.CustomerName, b.Price, s.opts.Currency, reference, s.opts.TokenTTL, s.opts.MaxDownloads)
	if err := s.repos.Purchases().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("persisting purchase: %w", err)
	}

	s.logger.Info("payment initialized", "reference", reference, "book_id", b.ID, "purchase_id", p.ID)
	s.metrics.IncrementCounter("payments.initialize.success", nil)

	return &InitializeResult{
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        reference,
		Book:             summarize(b),
	}, nil
}

// VerifyResult is returned after a confirmed successful payment. It is
// the only place a download token crosses to the customer.
type VerifyResult struct {
	PurchaseID        int64       `json:"purchaseId"`
	Reference         string      `json:"reference"`
	DownloadToken     string      `json:"downloadToken"`
	DownloadExpiresAt time.Time   `json:"downloadExpiresAt"`
	MaxDownloads      int         `json:"maxDownloads"`
	Book              ItemSummary `json:"book"`
}

// Verify asks the gateway for the charge outcome and finalizes the
// purchase accordingly. Safe to call repeatedly: once the record is
// terminal, a matching outcome is returned idempotently and an opposite
// one is refused.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	p, err := s.repos.Purchases().GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("fetching purchase %s: %w", reference, err)
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		// Transport failure says nothing about the charge outcome, so the
		// record stays pending for a later retry or the webhook.
		s.logger.Error("gateway verify failed", "reference", reference, "error", err)
		s.metrics.IncrementCounter("payments.verify.gateway_error", nil)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if !result.Succeeded() {
		applied, err := s.repos.Purchases().Finalize(ctx, reference, purchase.StatusFailed, nil)
		if err != nil {
			return nil, fmt.Errorf("finalizing purchase %s: %w", reference, err)
		}
		if !applied {
			// Someone finalized first. A recorded success disagreeing with a
			// gateway decline is a conflict, not a plain rejection.
			current, err := s.repos.Purchases().GetByReference(ctx, reference)
			if err != nil {
				return nil, fmt.Errorf("re-reading purchase %s: %w", reference, err)
			}
			if current.IsSuccessful() {
				s.logger.Error("conflicting verification outcome",
					"reference", reference,
					"recorded_status", string(current.Status),
					"gateway_status", result.Status,
				)
				s.metrics.IncrementCounter("payments.verify.conflict", nil)
				return nil, ErrConflictingOutcome
			}
			return nil, ErrPaymentRejected
		}

		p.Status = purchase.StatusFailed
		s.logger.Info("payment declined", "reference", reference, "gateway_status", result.Status)
		s.metrics.IncrementCounter("payments.verify.declined", nil)
		publishPurchaseEvent(ctx, s.queue, s.opts.QueueTarget, EventPurchaseFailed, p, s.logger)
		return nil, ErrPaymentRejected
	}

	applied, err := s.repos.Purchases().Finalize(ctx, reference, purchase.StatusSuccessful, &result.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("finalizing purchase %s: %w", reference, err)
	}

	if !applied {
		// Someone finalized first, usually the webhook. Re-read and honor
		// whatever landed.
		current, err := s.repos.Purchases().GetByReference(ctx, reference)
		if err != nil {
			return nil, fmt.Errorf("re-reading purchase %s: %w", reference, err)
		}
		if !current.IsSuccessful() {
			s.logger.Error("conflicting verification outcome",
				"reference", reference,
				"recorded_status", string(current.Status),
				"gateway_status", result.Status,
			)
			s.metrics.IncrementCounter("payments.verify.conflict", nil)
			return nil, ErrConflictingOutcome
		}
		p = current
	} else {
		p.Status = purchase.StatusSuccessful
		p.GatewayTransactionID = &result.TransactionID
		s.logger.Info("payment verified", "reference", reference, "transaction_id", result.TransactionID)
		s.metrics.IncrementCounter("payments.verify.success", nil)
		publishPurchaseEvent(ctx, s.queue, s.opts.QueueTarget, EventPurchaseCompleted, p, s.logger)
	}

	b, err := s.repos.Books().Get(ctx, p.BookID)
	if err != nil {
		return nil, fmt.Errorf("fetching book %d: %w", p.BookID, err)
	}

	return &VerifyResult{
		PurchaseID:        p.ID,
		Reference:         p.GatewayReference,
		DownloadToken:     p.DownloadToken,
		DownloadExpiresAt: p.DownloadExpiresAt,
		MaxDownloads:      p.MaxDownloads,
		Book:              summarize(b),
	}, nil
}

// StatusResult is the read-only view of a purchase. Entitlement fields
// are present only once the payment has succeeded.
type StatusResult struct {
	Reference         string          `json:"reference"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	CreatedAt         time.Time       `json:"createdAt"`
	DownloadToken     *string         `json:"downloadToken,omitempty"`
	DownloadExpiresAt *time.Time      `json:"downloadExpiresAt,omitempty"`
	DownloadsLeft     *int            `json:"downloadsRemaining,omitempty"`
	Book              ItemSummary     `json:"book"`
}

// Status reports the current purchase state without touching the
// gateway or mutating anything.
func (s *PaymentService) Status(ctx context.Context, reference string) (*StatusResult, error) {
	p, err := s.repos.Purchases().GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("fetching purchase %s: %w", reference, err)
	}

	b, err := s.repos.Books().Get(ctx, p.BookID)
	if err != nil {
		return nil, fmt.Errorf("fetching book %d: %w", p.BookID, err)
	}

	out := &StatusResult{
		Reference: p.GatewayReference,
		Status:    string(p.Status),
		Amount:    p.Amount,
		Currency:  p.Currency,
		CreatedAt: p.CreatedAt,
		Book:      summarize(b),
	}
	if p.IsSuccessful() {
		remaining := p.DownloadsRemaining()
		out.DownloadToken = &p.DownloadToken
		out.DownloadExpiresAt = &p.DownloadExpiresAt
		out.DownloadsLeft = &remaining
	}
	return out, nil
}
