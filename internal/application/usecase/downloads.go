package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/domain/entity"
	"github.com/Favour123/paystack-api/internal/domain/entity/download"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

// DownloadService redeems download tokens. Verify is read-only and hands
// out the asset URL; Complete burns one use of the entitlement and writes
// the audit event.
type DownloadService struct {
	repos         ports.Repositories
	storage       ports.ObjectStorage
	presignExpiry time.Duration
	logger        ports.Logger
	metrics       ports.Metrics
	now           func() time.Time
}

func NewDownloadService(repos ports.Repositories, storage ports.ObjectStorage, presignExpiry time.Duration, logger ports.Logger, metrics ports.Metrics) *DownloadService {
	return &DownloadService{
		repos:         repos,
		storage:       storage,
		presignExpiry: presignExpiry,
		logger:        logger.WithFields(map[string]interface{}{"component": "downloads"}),
		metrics:       metrics,
		now:           time.Now,
	}
}

// Access is what a valid token grants: the asset URL plus the state of
// the entitlement.
type Access struct {
	DownloadURL        string    `json:"downloadUrl"`
	BookTitle          string    `json:"bookTitle"`
	BookImageURL       string    `json:"bookImageUrl"`
	DownloadsRemaining int       `json:"downloadsRemaining"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

// Verify checks a token and returns download access without consuming a
// use. Tokens on non-successful purchases are indistinguishable from
// unknown tokens.
func (s *DownloadService) Verify(ctx context.Context, token string) (*Access, error) {
	p, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := p.CheckEntitlement(s.now()); err != nil {
		s.metrics.IncrementCounter("downloads.verify.refused", map[string]string{"reason": refusalReason(err)})
		return nil, err
	}

	b, err := s.repos.Books().Get(ctx, p.BookID)
	if err != nil {
		return nil, fmt.Errorf("fetching book %d: %w", p.BookID, err)
	}

	url, err := s.assetURL(ctx, b)
	if err != nil {
		return nil, err
	}

	return &Access{
		DownloadURL:        url,
		BookTitle:          b.Title,
		BookImageURL:       b.ImageURL,
		DownloadsRemaining: p.DownloadsRemaining(),
		ExpiresAt:          p.DownloadExpiresAt,
	}, nil
}

// Receipt reports the entitlement state after a consumed download.
type Receipt struct {
	DownloadsRemaining int       `json:"downloadsRemaining"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

// Complete consumes one download and records the audit event. The count
// increment and the event insert commit together; concurrent calls past
// the ceiling lose the conditional update and get the limit error.
func (s *DownloadService) Complete(ctx context.Context, token, ipAddress, userAgent string) (*Receipt, error) {
	p, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// Status and expiry are settled here so the caller sees the precise
	// refusal. The count ceiling is only provisionally checked; the
	// conditional update below is what actually enforces it under
	// concurrency.
	if err := p.CheckEntitlement(s.now()); err != nil {
		s.metrics.IncrementCounter("downloads.complete.refused", map[string]string{"reason": refusalReason(err)})
		return nil, err
	}

	ev := download.NewEvent(p.ID, token, ipAddress, userAgent)
	updated, err := s.repos.Purchases().ConsumeDownload(ctx, token, ev)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		if errors.Is(err, purchase.ErrDownloadLimitReached) {
			s.metrics.IncrementCounter("downloads.complete.refused", map[string]string{"reason": "limit"})
			return nil, err
		}
		return nil, fmt.Errorf("consuming download: %w", err)
	}

	s.logger.Info("download recorded",
		"purchase_id", updated.ID,
		"download_count", updated.DownloadCount,
		"remaining", updated.DownloadsRemaining(),
	)
	s.metrics.IncrementCounter("downloads.completed", nil)

	return &Receipt{
		DownloadsRemaining: updated.DownloadsRemaining(),
		ExpiresAt:          updated.DownloadExpiresAt,
	}, nil
}

// HistoryResult is the audit view of an entitlement.
type HistoryResult struct {
	BookTitle          string                  `json:"bookTitle"`
	PurchasedAt        time.Time               `json:"purchasedAt"`
	DownloadCount      int                     `json:"downloadCount"`
	MaxDownloads       int                     `json:"maxDownloads"`
	DownloadsRemaining int                     `json:"downloadsRemaining"`
	ExpiresAt          time.Time               `json:"expiresAt"`
	Events             []*entity.DownloadEvent `json:"events"`
}

// History lists the recorded downloads for a token, newest first. It
// works on expired and exhausted entitlements; only unknown or
// unsuccessful tokens are refused.
func (s *DownloadService) History(ctx context.Context, token string) (*HistoryResult, error) {
	p, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	b, err := s.repos.Books().Get(ctx, p.BookID)
	if err != nil {
		return nil, fmt.Errorf("fetching book %d: %w", p.BookID, err)
	}

	events, err := s.repos.DownloadEvents().ListByPurchase(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("listing download events: %w", err)
	}

	return &HistoryResult{
		BookTitle:          b.Title,
		PurchasedAt:        p.CreatedAt,
		DownloadCount:      p.DownloadCount,
		MaxDownloads:       p.MaxDownloads,
		DownloadsRemaining: p.DownloadsRemaining(),
		ExpiresAt:          p.DownloadExpiresAt,
		Events:             events,
	}, nil
}

// resolveToken maps a token to its purchase. Unknown tokens and tokens on
// purchases that never succeeded produce the same error.
func (s *DownloadService) resolveToken(ctx context.Context, token string) (*entity.Purchase, error) {
	v := &validator{}
	v.requireToken("token", token)
	if err := v.err(); err != nil {
		return nil, err
	}

	p, err := s.repos.Purchases().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("fetching purchase by token: %w", err)
	}
	if !p.IsSuccessful() {
		return nil, ErrTokenNotFound
	}
	return p, nil
}

// assetURL resolves the downloadable URL for a book. With object storage
// configured the key is presigned; otherwise the stored locator is
// returned as-is (it may already be a public URL).
func (s *DownloadService) assetURL(ctx context.Context, b *entity.Book) (string, error) {
	if s.storage == nil || b.FileKey == "" {
		return b.FileKey, nil
	}
	url, err := s.storage.PresignDownload(ctx, b.FileKey, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning download for book %d: %w", b.ID, err)
	}
	return url, nil
}

func refusalReason(err error) string {
	switch {
	case errors.Is(err, purchase.ErrDownloadExpired):
		return "expired"
	case errors.Is(err, purchase.ErrDownloadLimitReached):
		return "limit"
	default:
		return "invalid"
	}
}
