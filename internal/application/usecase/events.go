package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/domain/entity"
)

// Purchase lifecycle event types published for async consumers.
const (
	EventPurchaseCompleted = "purchase.completed"
	EventPurchaseFailed    = "purchase.failed"
)

// PurchaseEvent is the queue payload emitted when a purchase reaches a
// terminal state. Consumers send receipt mails and feed analytics.
type PurchaseEvent struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	PurchaseID    int64           `json:"purchase_id"`
	BookID        int64           `json:"book_id"`
	Reference     string          `json:"reference"`
	CustomerEmail string          `json:"customer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// publishPurchaseEvent emits a lifecycle event, best effort. A nil queue
// or publish failure never fails the purchase flow.
func publishPurchaseEvent(ctx context.Context, queue ports.Queue, target, eventType string, p *entity.Purchase, logger ports.Logger) {
	if queue == nil {
		return
	}

	ev := PurchaseEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		PurchaseID:    p.ID,
		BookID:        p.BookID,
		Reference:     p.GatewayReference,
		CustomerEmail: p.CustomerEmail,
		Amount:        p.Amount,
		Currency:      p.Currency,
		OccurredAt:    time.Now().UTC(),
	}

	if err := queue.Publish(ctx, &ports.QueueMessage{Target: target, Body: ev}); err != nil {
		logger.Warn("failed to publish purchase event",
			"event_type", eventType,
			"reference", p.GatewayReference,
			"error", err.Error(),
		)
	}
}
