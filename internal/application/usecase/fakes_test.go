package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/domain/entity"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
	"github.com/Favour123/paystack-api/internal/infrastructure/observability/noop"
)

// fakeRepos is an in-memory ports.Repositories. The purchase methods
// reproduce the conditional-update semantics of the real repository so
// concurrency behavior can be exercised in tests.
type fakeRepos struct {
	mu         sync.Mutex
	books      map[int64]*entity.Book
	purchases  map[string]*entity.Purchase // by reference
	events     []*entity.DownloadEvent
	nextBookID int64
	nextID     int64
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{
		books:     make(map[int64]*entity.Book),
		purchases: make(map[string]*entity.Purchase),
	}
}

func (f *fakeRepos) Books() ports.BookRepository              { return (*fakeBookRepo)(f) }
func (f *fakeRepos) Purchases() ports.PurchaseRepository      { return (*fakePurchaseRepo)(f) }
func (f *fakeRepos) DownloadEvents() ports.DownloadEventRepository { return (*fakeEventRepo)(f) }

func (f *fakeRepos) addBook(b *entity.Book) *entity.Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextBookID++
	b.ID = f.nextBookID
	f.books[b.ID] = b
	return b
}

func (f *fakeRepos) addPurchase(p *entity.Purchase) *entity.Purchase {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.purchases[p.GatewayReference] = p
	return p
}

type fakeBookRepo fakeRepos

func (f *fakeBookRepo) Create(ctx context.Context, b *entity.Book) error {
	(*fakeRepos)(f).addBook(b)
	return nil
}

func (f *fakeBookRepo) Update(ctx context.Context, b *entity.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[b.ID]; !ok {
		return ports.ErrNotFound
	}
	f.books[b.ID] = b
	return nil
}

func (f *fakeBookRepo) Get(ctx context.Context, id int64) (*entity.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookRepo) GetActive(ctx context.Context, id int64) (*entity.Book, error) {
	b, err := f.Get(ctx, id)
	if err != nil || !b.IsActive {
		return nil, ports.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookRepo) ListActive(ctx context.Context) ([]*entity.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Book
	for _, b := range f.books {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookRepo) Deactivate(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok || !b.IsActive {
		return false, nil
	}
	b.Deactivate()
	return true, nil
}

type fakePurchaseRepo fakeRepos

func (f *fakePurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	(*fakeRepos)(f).addPurchase(p)
	return nil
}

func (f *fakePurchaseRepo) GetByReference(ctx context.Context, reference string) (*entity.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[reference]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePurchaseRepo) GetByToken(ctx context.Context, token string) (*entity.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.purchases {
		if p.DownloadToken == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakePurchaseRepo) Finalize(ctx context.Context, reference string, status purchase.Status, transactionID *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[reference]
	if !ok || p.Status != purchase.StatusPending {
		return false, nil
	}
	p.Status = status
	if transactionID != nil {
		p.GatewayTransactionID = transactionID
	}
	return true, nil
}

func (f *fakePurchaseRepo) ConsumeDownload(ctx context.Context, token string, ev *entity.DownloadEvent) (*entity.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.purchases {
		if p.DownloadToken != token {
			continue
		}
		if p.Status != purchase.StatusSuccessful {
			return nil, ports.ErrNotFound
		}
		if p.DownloadCount >= p.MaxDownloads {
			return nil, purchase.ErrDownloadLimitReached
		}
		p.DownloadCount++
		f.events = append(f.events, ev)
		cp := *p
		return &cp, nil
	}
	return nil, ports.ErrNotFound
}

type fakeEventRepo fakeRepos

func (f *fakeEventRepo) ListByPurchase(ctx context.Context, purchaseID int64) ([]*entity.DownloadEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.DownloadEvent
	for _, ev := range f.events {
		if ev.PurchaseID == purchaseID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// fakeGateway is a scripted ports.PaymentGateway.
type fakeGateway struct {
	initResult   *ports.Authorization
	initErr      error
	initCalls    int
	verifyResult *ports.VerificationResult
	verifyErr    error
	verifyCalls  int
}

func (g *fakeGateway) Initialize(ctx context.Context, req ports.InitializeTransaction) (*ports.Authorization, error) {
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.initResult != nil {
		return g.initResult, nil
	}
	return &ports.Authorization{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		AccessCode:       "AC_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*ports.VerificationResult, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyResult, nil
}

// fakeQueue records published messages.
type fakeQueue struct {
	mu        sync.Mutex
	published []*ports.QueueMessage
	failWith  error
}

func (q *fakeQueue) Publish(ctx context.Context, message *ports.QueueMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return q.failWith
	}
	q.published = append(q.published, message)
	return nil
}

func (q *fakeQueue) Close() error { return nil }

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.published)
}

// fakeStorage presigns by prefixing the key.
type fakeStorage struct {
	err error
}

func (s *fakeStorage) PresignDownload(ctx context.Context, key string, _ time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/" + key + "?signed", nil
}

func testObservability() (ports.Logger, ports.Metrics) {
	return noop.NewLogger(), noop.NewMetrics()
}
