package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Favour123/paystack-api/internal/domain/entity"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

func newDownloadService(repos *fakeRepos, storage *fakeStorage) *DownloadService {
	logger, metrics := testObservability()
	if storage == nil {
		return NewDownloadService(repos, nil, 15*time.Minute, logger, metrics)
	}
	return NewDownloadService(repos, storage, 15*time.Minute, logger, metrics)
}

// seedSuccessfulPurchase creates a book and a finalized purchase ready
// for download.
func seedSuccessfulPurchase(t *testing.T, repos *fakeRepos) *entity.Purchase {
	t.Helper()
	p := seedPendingPurchase(repos)
	txn := "991122"
	applied, err := repos.Purchases().Finalize(context.Background(), p.GatewayReference, purchase.StatusSuccessful, &txn)
	require.NoError(t, err)
	require.True(t, applied)
	p.Status = purchase.StatusSuccessful
	return p
}

func TestDownloadVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token grants presigned access without consuming", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		svc := newDownloadService(repos, &fakeStorage{})

		access, err := svc.Verify(ctx, p.DownloadToken)

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/assets/fox.pdf?signed", access.DownloadURL)
		assert.Equal(t, "The Brave Little Fox", access.BookTitle)
		assert.Equal(t, 3, access.DownloadsRemaining)

		stored, _ := repos.Purchases().GetByToken(ctx, p.DownloadToken)
		assert.Equal(t, 0, stored.DownloadCount)
	})

	t.Run("no storage configured falls back to the stored locator", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		svc := newDownloadService(repos, nil)

		access, err := svc.Verify(ctx, p.DownloadToken)

		require.NoError(t, err)
		assert.Equal(t, "assets/fox.pdf", access.DownloadURL)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc := newDownloadService(newFakeRepos(), nil)

		_, err := svc.Verify(ctx, purchase.NewDownloadToken())

		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("token on a pending purchase looks unknown", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedPendingPurchase(repos)
		svc := newDownloadService(repos, nil)

		_, err := svc.Verify(ctx, p.DownloadToken)

		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("expired entitlement", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		repos.purchases[p.GatewayReference].DownloadExpiresAt = time.Now().Add(-time.Hour)
		svc := newDownloadService(repos, nil)

		_, err := svc.Verify(ctx, p.DownloadToken)

		assert.ErrorIs(t, err, purchase.ErrDownloadExpired)
	})

	t.Run("exhausted entitlement", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		repos.purchases[p.GatewayReference].DownloadCount = 3
		svc := newDownloadService(repos, nil)

		_, err := svc.Verify(ctx, p.DownloadToken)

		assert.ErrorIs(t, err, purchase.ErrDownloadLimitReached)
	})

	t.Run("expiry wins over the exhausted count", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		stored := repos.purchases[p.GatewayReference]
		stored.DownloadExpiresAt = time.Now().Add(-time.Hour)
		stored.DownloadCount = 3
		svc := newDownloadService(repos, nil)

		_, err := svc.Verify(ctx, p.DownloadToken)

		assert.ErrorIs(t, err, purchase.ErrDownloadExpired)
	})

	t.Run("malformed token is rejected before any lookup", func(t *testing.T) {
		svc := newDownloadService(newFakeRepos(), nil)

		_, err := svc.Verify(ctx, "short")

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestDownloadComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes one use and records the event", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		svc := newDownloadService(repos, nil)

		receipt, err := svc.Complete(ctx, p.DownloadToken, "203.0.113.9", "test-agent/1.0")

		require.NoError(t, err)
		assert.Equal(t, 2, receipt.DownloadsRemaining)

		events, err := repos.DownloadEvents().ListByPurchase(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "203.0.113.9", events[0].IPAddress)
		assert.Equal(t, "test-agent/1.0", events[0].UserAgent)
	})

	t.Run("remaining count steps down to zero then refuses", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		svc := newDownloadService(repos, nil)

		for _, want := range []int{2, 1, 0} {
			receipt, err := svc.Complete(ctx, p.DownloadToken, "203.0.113.9", "test-agent/1.0")
			require.NoError(t, err)
			assert.Equal(t, want, receipt.DownloadsRemaining)
		}

		_, err := svc.Complete(ctx, p.DownloadToken, "203.0.113.9", "test-agent/1.0")
		assert.ErrorIs(t, err, purchase.ErrDownloadLimitReached)

		events, _ := repos.DownloadEvents().ListByPurchase(ctx, p.ID)
		assert.Len(t, events, 3)
	})

	t.Run("concurrent completes never exceed the ceiling", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		svc := newDownloadService(repos, nil)

		const attempts = 10
		var wg sync.WaitGroup
		errs := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Complete(ctx, p.DownloadToken, "203.0.113.9", "test-agent/1.0")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var granted int
		for err := range errs {
			if err == nil {
				granted++
			} else {
				assert.ErrorIs(t, err, purchase.ErrDownloadLimitReached)
			}
		}
		assert.Equal(t, 3, granted)

		events, _ := repos.DownloadEvents().ListByPurchase(ctx, p.ID)
		assert.Len(t, events, 3)
	})

	t.Run("expired entitlement refuses without consuming", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		repos.purchases[p.GatewayReference].DownloadExpiresAt = time.Now().Add(-time.Hour)
		svc := newDownloadService(repos, nil)

		_, err := svc.Complete(ctx, p.DownloadToken, "203.0.113.9", "test-agent/1.0")

		assert.ErrorIs(t, err, purchase.ErrDownloadExpired)
		stored, _ := repos.Purchases().GetByToken(ctx, p.DownloadToken)
		assert.Equal(t, 0, stored.DownloadCount)
	})
}

func TestDownloadHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("lists recorded downloads", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		svc := newDownloadService(repos, nil)

		_, err := svc.Complete(ctx, p.DownloadToken, "203.0.113.9", "test-agent/1.0")
		require.NoError(t, err)
		_, err = svc.Complete(ctx, p.DownloadToken, "203.0.113.10", "test-agent/1.0")
		require.NoError(t, err)

		history, err := svc.History(ctx, p.DownloadToken)

		require.NoError(t, err)
		assert.Equal(t, "The Brave Little Fox", history.BookTitle)
		assert.Equal(t, 2, history.DownloadCount)
		assert.Equal(t, 1, history.DownloadsRemaining)
		assert.Len(t, history.Events, 2)
	})

	t.Run("works on an exhausted entitlement", func(t *testing.T) {
		repos := newFakeRepos()
		p := seedSuccessfulPurchase(t, repos)
		repos.purchases[p.GatewayReference].DownloadCount = 3
		svc := newDownloadService(repos, nil)

		history, err := svc.History(ctx, p.DownloadToken)

		require.NoError(t, err)
		assert.Equal(t, 0, history.DownloadsRemaining)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc := newDownloadService(newFakeRepos(), nil)

		_, err := svc.History(ctx, purchase.NewDownloadToken())

		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}
