package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

const webhookSecret = "whsec_test_1234"

func newWebhookService(repos *fakeRepos, queue *fakeQueue) *WebhookService {
	logger, metrics := testObservability()
	if queue == nil {
		return NewWebhookService(repos, nil, webhookSecret, "purchase_events", logger, metrics)
	}
	return NewWebhookService(repos, queue, webhookSecret, "purchase_events", logger, metrics)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	svc := newWebhookService(newFakeRepos(), nil)
	body := []byte(`{"event":"charge.success"}`)

	t.Run("accepts a valid signature", func(t *testing.T) {
		assert.True(t, svc.VerifySignature(body, sign(webhookSecret, body)))
	})

	t.Run("rejects a signature from the wrong secret", func(t *testing.T) {
		assert.False(t, svc.VerifySignature(body, sign("whsec_other", body)))
	})

	t.Run("rejects a signature over different bytes", func(t *testing.T) {
		assert.False(t, svc.VerifySignature([]byte(`{"event":"tampered"}`), sign(webhookSecret, body)))
	})

	t.Run("rejects an empty signature", func(t *testing.T) {
		assert.False(t, svc.VerifySignature(body, ""))
	})

	t.Run("rejects everything when no secret is configured", func(t *testing.T) {
		logger, metrics := testObservability()
		unconfigured := NewWebhookService(newFakeRepos(), nil, "", "purchase_events", logger, metrics)
		assert.False(t, unconfigured.VerifySignature(body, sign("", body)))
	})
}

func chargeEvent(event, reference string, id int64) []byte {
	return []byte(fmt.Sprintf(`{"event":%q,"data":{"id":%d,"reference":%q,"status":"whatever"}}`, event, id, reference))
}

func TestWebhookProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("charge.success finalizes the purchase", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedPendingPurchase(repos)
		queue := &fakeQueue{}
		svc := newWebhookService(repos, queue)

		err := svc.Process(ctx, chargeEvent("charge.success", p.GatewayReference, 991122))

		require.NoError(t, err)
		stored, _ := repos.Purchases().GetByReference(ctx, p.GatewayReference)
		assert.Equal(t, purchase.StatusSuccessful, stored.Status)
		require.NotNil(t, stored.GatewayTransactionID)
		assert.Equal(t, "991122", *stored.GatewayTransactionID)
		assert.Equal(t, 1, queue.count())
	})

	t.Run("charge.failed finalizes the purchase as failed", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedPendingPurchase(repos)
		svc := newWebhookService(repos, nil)

		err := svc.Process(ctx, chargeEvent("charge.failed", p.GatewayReference, 991122))

		require.NoError(t, err)
		stored, _ := repos.Purchases().GetByReference(ctx, p.GatewayReference)
		assert.Equal(t, purchase.StatusFailed, stored.Status)
	})

	t.Run("duplicate delivery is a no-op", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedPendingPurchase(repos)
		queue := &fakeQueue{}
		svc := newWebhookService(repos, queue)
		body := chargeEvent("charge.success", p.GatewayReference, 991122)

		require.NoError(t, svc.Process(ctx, body))
		require.NoError(t, svc.Process(ctx, body))

		assert.Equal(t, 1, queue.count())
	})

	t.Run("opposite outcome after finalization never overwrites", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedPendingPurchase(repos)
		svc := newWebhookService(repos, nil)

		require.NoError(t, svc.Process(ctx, chargeEvent("charge.success", p.GatewayReference, 991122)))
		require.NoError(t, svc.Process(ctx, chargeEvent("charge.failed", p.GatewayReference, 991122)))

		stored, _ := repos.Purchases().GetByReference(ctx, p.GatewayReference)
		assert.Equal(t, purchase.StatusSuccessful, stored.Status)
	})

	t.Run("unknown reference is acknowledged without error", func(t *testing.T) {
		svc := newWebhookService(newFakeRepos(), nil)

		err := svc.Process(ctx, chargeEvent("charge.success", "HLP_0_missing", 991122))

		assert.NoError(t, err)
	})

	t.Run("unrecognized event types are ignored", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedPendingPurchase(repos)
		svc := newWebhookService(repos, nil)

		err := svc.Process(ctx, chargeEvent("transfer.success", p.GatewayReference, 991122))

		require.NoError(t, err)
		stored, _ := repos.Purchases().GetByReference(ctx, p.GatewayReference)
		assert.Equal(t, purchase.StatusPending, stored.Status)
	})

	t.Run("malformed payload is a validation error", func(t *testing.T) {
		svc := newWebhookService(newFakeRepos(), nil)

		err := svc.Process(ctx, []byte("{not json"))

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
