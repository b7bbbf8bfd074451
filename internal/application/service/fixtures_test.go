package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock is a settable clock shared by the services under test
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingArchive remembers what was archived and can be told to fail
type recordingArchive struct {
	mu         sync.Mutex
	saved      []uuid.UUID
	deleted    []uuid.UUID
	reassigned [][2]uuid.UUID
	fail       error
}

func (a *recordingArchive) Save(_ context.Context, s *entity.TabSession) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return a.fail
	}
	a.saved = append(a.saved, s.ID)
	return nil
}

func (a *recordingArchive) DeleteSessions(_ context.Context, ids []uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return a.fail
	}
	a.deleted = append(a.deleted, ids...)
	return nil
}

func (a *recordingArchive) DeleteClient(_ context.Context, _ uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fail
}

func (a *recordingArchive) Reassign(_ context.Context, from, to uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return a.fail
	}
	a.reassigned = append(a.reassigned, [2]uuid.UUID{from, to})
	return nil
}

var errArchiveDown = errors.New("archive unavailable")

type testEnv struct {
	clock       *fakeClock
	archive     *recordingArchive
	clientRepo  domainRepo.ClientRepository
	productRepo domainRepo.ProductRepository
	tabs        *TabService
	settlement  *SettlementService
	clients     *ClientService
	products    *ProductService
	analytics   *AnalyticsService
	exports     *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	clock := &fakeClock{t: openedAt}
	archive := &recordingArchive{}
	clientRepo := repository.NewClientRepository()
	productRepo := repository.NewProductRepository()

	env := &testEnv{
		clock:       clock,
		archive:     archive,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		tabs:        NewTabService(clientRepo, productRepo, logger, clock.Now),
		settlement:  NewSettlementService(clientRepo, archive, logger, clock.Now),
		clients:     NewClientService(clientRepo, archive, logger, clock.Now),
		products:    NewProductService(productRepo, clientRepo, logger, clock.Now),
	}
	env.analytics = NewAnalyticsService(repository.NewAnalyticsRepository(clientRepo), env.clients, clock.Now)
	env.exports = NewExportService(env.analytics, clientRepo, logger)
	return env
}

func (e *testEnv) product(t *testing.T, name, category, price string) *entity.Product {
	t.Helper()
	p, err := e.products.CreateProduct(context.Background(), &CreateProductInput{Name: name, Category: category, Price: dec(price)})
	require.NoError(t, err)
	return p
}

func (e *testEnv) client(t *testing.T, name string) *entity.Client {
	t.Helper()
	c, err := e.clients.CreateClient(context.Background(), name)
	require.NoError(t, err)
	return c
}

func (e *testEnv) add(t *testing.T, clientID uuid.UUID, products ...*entity.Product) *entity.Client {
	t.Helper()
	var res *AddItemResult
	for _, p := range products {
		var err error
		res, err = e.tabs.AddItem(context.Background(), clientID, p.ID)
		require.NoError(t, err)
	}
	return res.Client
}

// visit opens a tab with the products, waits d, and settles it in cash
func (e *testEnv) visit(t *testing.T, clientID uuid.UUID, d time.Duration, products ...*entity.Product) *entity.TabSession {
	t.Helper()
	c := e.add(t, clientID, products...)
	e.clock.Advance(d)
	res, err := e.settlement.Settle(context.Background(), clientID, []entity.SplitPayment{
		{Amount: c.Total()},
	})
	require.NoError(t, err)
	e.clock.Advance(time.Hour)
	return res.Session
}
