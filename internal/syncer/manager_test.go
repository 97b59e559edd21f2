package syncer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"linkback/internal/config"
	"linkback/internal/logger"
	"linkback/internal/models"
	"linkback/internal/services/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu         sync.Mutex
	fetchCalls int
	pages      []*shopify.ProductPage
	product    *shopify.Product
	err        error
	onFetch    func()
}

func (f *fakeCatalog) FetchProducts(ctx context.Context, shopDomain, accessToken string, first int, after string) (*shopify.ProductPage, error) {
	f.mu.Lock()
	call := f.fetchCalls
	f.fetchCalls++
	onFetch := f.onFetch
	f.mu.Unlock()

	if onFetch != nil {
		onFetch()
	}
	if f.err != nil {
		return nil, f.err
	}
	if call >= len(f.pages) {
		return &shopify.ProductPage{}, nil
	}
	return f.pages[call], nil
}

func (f *fakeCatalog) FetchProduct(ctx context.Context, shopDomain, accessToken, productID string) (*shopify.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

type fakeBackend struct {
	mu          sync.Mutex
	store       map[string]models.ProductRecord
	failIDs     map[string]bool
	inFlight    int
	maxInFlight int
	writeDelay  time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		store:   make(map[string]models.ProductRecord),
		failIDs: make(map[string]bool),
	}
}

func (f *fakeBackend) SyncProduct(ctx context.Context, product models.ProductRecord) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.writeDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if f.failIDs[product.ProductID] {
		return fmt.Errorf("write rejected for %s", product.ProductID)
	}
	f.store[product.ProductID] = product
	return nil
}

func (f *fakeBackend) GetProducts(ctx context.Context, shopID, productID string) ([]models.ProductRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var products []models.ProductRecord
	for _, product := range f.store {
		if productID != "" && product.ProductID != productID {
			continue
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ProductID < products[j].ProductID
	})
	return products, nil
}

func (f *fakeBackend) maxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

type staticTokens string

func (s staticTokens) AccessToken(shopDomain string) (string, error) {
	return string(s), nil
}

func testConfig() *config.Config {
	return &config.Config{
		SyncFreshnessWindow:  5 * time.Minute,
		SyncBatchSize:        10,
		SyncBatchConcurrency: 10,
		SyncPageSize:         250,
		SyncMaxProducts:      250,
		SyncTimeout:          5 * time.Second,
	}
}

func catalogProducts(n int) []shopify.Product {
	products := make([]shopify.Product, n)
	for i := range products {
		products[i] = shopify.Product{
			ID:    fmt.Sprintf("gid://shopify/Product/%d", i+1),
			Title: fmt.Sprintf("Product %d", i+1),
			Variants: []shopify.Variant{
				{ID: fmt.Sprintf("gid://shopify/ProductVariant/%d", 100+i), Price: "19.99", InventoryQuantity: 3},
			},
		}
	}
	return products
}

func newTestManager(catalog *fakeCatalog, backend *fakeBackend) *Manager {
	return NewManager(catalog, backend, staticTokens("token"), nil, testConfig(), logger.New("error"))
}

func TestSyncAndFetch_WritesAndReadsBack(t *testing.T) {
	catalog := &fakeCatalog{pages: []*shopify.ProductPage{{Products: catalogProducts(3)}}}
	backend := newFakeBackend()
	manager := newTestManager(catalog, backend)

	outcome, err := manager.SyncAndFetch(context.Background(), "shop1.myshopify.com", Options{})

	require.NoError(t, err)
	assert.Len(t, outcome.Products, 3)
	assert.Equal(t, 3, outcome.Report.Successful)
	assert.Equal(t, 0, outcome.Report.Failed)
	assert.False(t, outcome.FromCache)
	assert.Equal(t, "1", outcome.Products[0].ProductID)
	assert.Equal(t, 19.99, outcome.Products[0].Variants[0].Price)
}

func TestSyncAndFetch_EmptyCatalogIsNotAnError(t *testing.T) {
	catalog := &fakeCatalog{pages: []*shopify.ProductPage{{}}}
	backend := newFakeBackend()
	manager := newTestManager(catalog, backend)

	outcome, err := manager.SyncAndFetch(context.Background(), "shop1", Options{})

	require.NoError(t, err)
	assert.Empty(t, outcome.Products)
	assert.Equal(t, 0, outcome.Report.Successful)

	// The write pass never ran, so the freshness timestamp stays unset.
	status := manager.Status("shop1")
	assert.Nil(t, status.LastSync)
}

func TestSyncAndFetch_Pagination(t *testing.T) {
	products := catalogProducts(5)
	catalog := &fakeCatalog{pages: []*shopify.ProductPage{
		{Products: products[0:2], HasNextPage: true, EndCursor: "c1"},
		{Products: products[2:4], HasNextPage: true, EndCursor: "c2"},
		{Products: products[4:5]},
	}}
	backend := newFakeBackend()
	manager := newTestManager(catalog, backend)

	outcome, err := manager.SyncAndFetch(context.Background(), "shop1", Options{})

	require.NoError(t, err)
	assert.Equal(t, 3, catalog.calls())
	assert.Len(t, outcome.Products, 5)
}

func TestSyncAndFetch_LimitCapsFetch(t *testing.T) {
	products := catalogProducts(4)
	catalog := &fakeCatalog{pages: []*shopify.ProductPage{
		{Products: products[0:2], HasNextPage: true, EndCursor: "c1"},
		{Products: products[2:4], HasNextPage: true, EndCursor: "c2"},
	}}
	backend := newFakeBackend()
	manager := newTestManager(catalog, backend)

	outcome, err := manager.SyncAndFetch(context.Background(), "shop1", Options{Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, 1, catalog.calls())
	assert.Len(t, outcome.Products, 2)
}

func TestSyncAndFetch_ConcurrencyGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	catalog := &fakeCatalog{pages: []*shopify.ProductPage{{Products: catalogProducts(2)}}}
	var once sync.Once
	catalog.onFetch = func() {
		once.Do(func() { close(started) })
		<-release
	}

	backend := newFakeBackend()
	backend.store["99"] = models.ProductRecord{ProductID: "99", Title: "Stale"}
	manager := newTestManager(catalog, backend)

	var firstOutcome *Outcome
	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		firstOutcome, firstErr = manager.SyncAndFetch(context.Background(), "shop1", Options{})
	}()

	<-started
	assert.True(t, manager.Status("shop1").InProgress)

	// The second caller gets whatever the backend currently holds, without a
	// second upstream fetch.
	second, err := manager.SyncAndFetch(context.Background(), "shop1", Options{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	require.Len(t, second.Products, 1)
	assert.Equal(t, "Stale", second.Products[0].Title)
	assert.Equal(t, 1, catalog.calls())

	close(release)
	<-done
	require.NoError(t, firstErr)
	assert.False(t, firstOutcome.FromCache)
	assert.False(t, manager.Status("shop1").InProgress)
}

func TestSyncAndFetch_FreshnessGuard(t *testing.T) {
	catalog := &fakeCatalog{pages: []*shopify.ProductPage{
		{Products: catalogProducts(2)},
		{Products: catalogProducts(2)},
	}}
	backend := newFakeBackend()
	manager := newTestManager(catalog, backend)

	_, err := manager.SyncAndFetch(context.Background(), "shop1", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, catalog.calls())

	second, err := manager.SyncAndFetch(context.Background(), "shop1", Options{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, catalog.calls())

	// Force bypasses the freshness window.
	third, err := manager.SyncAndFetch(context.Background(), "shop1", Options{ForceRefresh: true})
	require.NoError(t, err)
	assert.False(t, third.FromCache)
	assert.Equal(t, 2, catalog.calls())
}

func TestSyncAndFetch_Idempotent(t *testing.T) {
	catalog := &fakeCatalog{pages: []*shopify.ProductPage{
		{Products: catalogProducts(3)},
		{Products: catalogProducts(3)},
	}}
	backend := newFakeBackend()
	manager := newTestManager(catalog, backend)

	first, err := manager.SyncAndFetch(context.Background(), "shop1", Options{ForceRefresh: true})
	require.NoError(t, err)
	second, err := manager.SyncAndFetch(context.Background(), "shop1", Options{ForceRefresh: true})
	require.NoError(t, err)

	assert.Equal(t, first.Products, second.Products)
	assert.Len(t, second.Products, 3)
}

func TestSyncAndFetch_PartialFailureIsolation(t *testing.T) {
	catalog := &fakeCatalog{pages: []*shopify.ProductPage{{Products: catalogProducts(10)}}}
	backend := newFakeBackend()
	backend.failIDs["5"] = true
	manager := newTestManager(catalog, backend)

	outcome, err := manager.SyncAndFetch(context.Background(), "shop1", Options{})

	require.NoError(t, err)
	assert.Equal(t, 9, outcome.Report.Successful)
	assert.Equal(t, 1, outcome.Report.Failed)
	require.Len(t, outcome.Report.Errors, 1)
	assert.Equal(t, "5", outcome.Report.Errors[0].ProductID)

	// All nine successes are present in the read-back.
	assert.Len(t, outcome.Products, 9)
	for _, product := range outcome.Products {
		assert.NotEqual(t, "5", product.ProductID)
	}

	// A partial failure still counts as a completed pass.
	status := manager.Status("shop1")
	require.NotNil(t, status.LastSync)
	assert.True(t, status.IsRecent)
}

func TestSyncAndFetch_BatchWriteConcurrencyCap(t *testing.T) {
	catalog := &fakeCatalog{pages: []*shopify.ProductPage{{Products: catalogProducts(10)}}}
	backend := newFakeBackend()
	backend.writeDelay = 5 * time.Millisecond
	cfg := testConfig()
	cfg.SyncBatchConcurrency = 2
	manager := NewManager(catalog, backend, staticTokens("token"), nil, cfg, logger.New("error"))

	outcome, err := manager.SyncAndFetch(context.Background(), "shop1", Options{})

	require.NoError(t, err)
	assert.Equal(t, 10, outcome.Report.Successful)
	assert.LessOrEqual(t, backend.maxConcurrent(), 2)
}

func TestSyncAndFetch_FatalCatalogError(t *testing.T) {
	catalog := &fakeCatalog{err: fmt.Errorf("boom")}
	backend := newFakeBackend()
	manager := newTestManager(catalog, backend)

	_, err := manager.SyncAndFetch(context.Background(), "shop1", Options{})

	require.Error(t, err)
	// The in-progress flag must be released on failure.
	assert.False(t, manager.Status("shop1").InProgress)
}

func TestResyncProduct(t *testing.T) {
	catalog := &fakeCatalog{product: &shopify.Product{
		ID:    "gid://shopify/Product/42",
		Title: "Single",
		Variants: []shopify.Variant{
			{ID: "gid://shopify/ProductVariant/420", Price: "10.00"},
		},
	}}
	backend := newFakeBackend()
	backend.store["7"] = models.ProductRecord{ProductID: "7"}
	manager := newTestManager(catalog, backend)

	outcome, err := manager.ResyncProduct(context.Background(), "shop1", "42")

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Report.Successful)
	require.Len(t, outcome.Products, 1)
	assert.Equal(t, "42", outcome.Products[0].ProductID)
}

func TestStatus_UnknownShop(t *testing.T) {
	manager := newTestManager(&fakeCatalog{}, newFakeBackend())

	status := manager.Status("never-synced")

	assert.False(t, status.InProgress)
	assert.Nil(t, status.LastSync)
	assert.False(t, status.IsRecent)
}
