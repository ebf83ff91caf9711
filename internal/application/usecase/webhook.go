package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

// WebhookService authenticates and applies gateway event notifications.
// Webhooks race with the synchronous verify path; both resolve through
// the same conditional finalization.
type WebhookService struct {
	repos       ports.Repositories
	queue       ports.Queue
	secret      []byte
	queueTarget string
	logger      ports.Logger
	metrics     ports.Metrics
}

func NewWebhookService(repos ports.Repositories, queue ports.Queue, secret, queueTarget string, logger ports.Logger, metrics ports.Metrics) *WebhookService {
	return &WebhookService{
		repos:       repos,
		queue:       queue,
		secret:      []byte(secret),
		queueTarget: queueTarget,
		logger:      logger.WithFields(map[string]interface{}{"component": "webhooks"}),
		metrics:     metrics,
	}
}

// VerifySignature checks the HMAC-SHA512 signature over the raw request
// body. Comparison is constant time.
func (s *WebhookService) VerifySignature(body []byte, signature string) bool {
	if len(s.secret) == 0 || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, s.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// webhookEnvelope is the subset of the gateway's event payload this
// service acts on.
type webhookEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// Process applies an authenticated event. Unrecognized event types and
// references with no matching purchase are acknowledged without action so
// the gateway stops retrying them.
func (s *WebhookService) Process(ctx context.Context, body []byte) error {
	var ev webhookEnvelope
	if err := json.Unmarshal(body, &ev); err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "malformed event payload"}}}
	}

	s.metrics.IncrementCounter("webhooks.received", map[string]string{"event": ev.Event})

	switch ev.Event {
	case "charge.success":
		txnID := strconv.FormatInt(ev.Data.ID, 10)
		return s.finalize(ctx, ev.Data.Reference, purchase.StatusSuccessful, &txnID)
	case "charge.failed":
		return s.finalize(ctx, ev.Data.Reference, purchase.StatusFailed, nil)
	default:
		s.logger.Debug("ignoring webhook event", "event", ev.Event)
		return nil
	}
}

func (s *WebhookService) finalize(ctx context.Context, reference string, status purchase.Status, transactionID *string) error {
	if reference == "" {
		s.logger.Warn("webhook event without reference", "status", string(status))
		return nil
	}

	applied, err := s.repos.Purchases().Finalize(ctx, reference, status, transactionID)
	if err != nil {
		return fmt.Errorf("finalizing purchase %s: %w", reference, err)
	}

	if !applied {
		current, err := s.repos.Purchases().GetByReference(ctx, reference)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				// Unknown reference, possibly another environment's event.
				s.logger.Warn("webhook for unknown purchase", "reference", reference)
				s.metrics.IncrementCounter("webhooks.unknown_reference", nil)
				return nil
			}
			return fmt.Errorf("re-reading purchase %s: %w", reference, err)
		}

		if current.Status != status {
			// The record is terminal with the opposite outcome. Never
			// overwritten; flagged for operator attention instead.
			s.logger.Error("conflicting webhook outcome",
				"reference", reference,
				"recorded_status", string(current.Status),
				"webhook_status", string(status),
			)
			s.metrics.IncrementCounter("webhooks.conflict", nil)
		}
		return nil
	}

	s.logger.Info("purchase finalized via webhook", "reference", reference, "status", string(status))
	s.metrics.IncrementCounter("webhooks.finalized", map[string]string{"status": string(status)})

	p, err := s.repos.Purchases().GetByReference(ctx, reference)
	if err != nil {
		s.logger.Warn("finalized purchase not readable for event publish", "reference", reference, "error", err.Error())
		return nil
	}

	eventType := EventPurchaseFailed
	if status == purchase.StatusSuccessful {
		eventType = EventPurchaseCompleted
	}
	publishPurchaseEvent(ctx, s.queue, s.queueTarget, eventType, p, s.logger)
	return nil
}
