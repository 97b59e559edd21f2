package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"linkback/internal/config"
	"linkback/internal/events"
	"linkback/internal/logger"
	"linkback/internal/models"
	"linkback/internal/services/shopify"
)

// CatalogClient reads the shop's product catalog.
type CatalogClient interface {
	FetchProducts(ctx context.Context, shopDomain, accessToken string, first int, after string) (*shopify.ProductPage, error)
	FetchProduct(ctx context.Context, shopDomain, accessToken, productID string) (*shopify.Product, error)
}

// BackendClient is the slice of the system-of-record API the syncer needs.
type BackendClient interface {
	SyncProduct(ctx context.Context, product models.ProductRecord) error
	GetProducts(ctx context.Context, shopID, productID string) ([]models.ProductRecord, error)
}

// TokenSource resolves a shop's stored access token; "" means not installed.
type TokenSource interface {
	AccessToken(shopDomain string) (string, error)
}

// Publisher is satisfied by events.Publisher; nil disables event emission.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Options controls one sync request.
type Options struct {
	ForceRefresh bool
	Limit        int
}

// Report summarizes the write pass of a sync. Per-product failures are
// recorded here, not propagated.
type Report struct {
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Errors     []ProductError `json:"errors,omitempty"`
}

type ProductError struct {
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

// Outcome is what a sync request returns: the backend's product set (the
// source of truth), the write report, and whether guards short-circuited the
// upstream fetch.
type Outcome struct {
	Products  []models.ProductRecord `json:"products"`
	Report    Report                 `json:"report"`
	FromCache bool                   `json:"from_cache"`
}

// Status is the externally visible sync state for a shop.
type Status struct {
	InProgress bool       `json:"in_progress"`
	LastSync   *time.Time `json:"last_sync"`
	IsRecent   bool       `json:"is_recent"`
}

// shopState is process-local only: it is a cache hint and an advisory guard,
// not a cross-replica lock. The backend remains the consistency boundary.
type shopState struct {
	inProgress bool
	lastSync   time.Time
}

// Manager reconciles shop catalogs with the backend, one sync in flight per
// shop at a time within this process.
type Manager struct {
	catalog   CatalogClient
	backend   BackendClient
	tokens    TokenSource
	publisher Publisher
	cfg       *config.Config
	logger    *logger.Logger

	mu     sync.Mutex
	states map[string]*shopState
}

func NewManager(catalog CatalogClient, backend BackendClient, tokens TokenSource, publisher Publisher, cfg *config.Config, logger *logger.Logger) *Manager {
	return &Manager{
		catalog:   catalog,
		backend:   backend,
		tokens:    tokens,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		states:    make(map[string]*shopState),
	}
}

// SyncAndFetch makes the backend reflect the shop's current catalog and
// returns the backend's product set. Unless forced, an in-flight sync or a
// recent one short-circuits to a plain backend read; the data returned on the
// in-flight path is intentionally whatever the backend holds right now, not
// the running sync's eventual result.
func (m *Manager) SyncAndFetch(ctx context.Context, shopID string, opts Options) (*Outcome, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = m.cfg.SyncMaxProducts
	}

	m.mu.Lock()
	state := m.states[shopID]
	if state == nil {
		state = &shopState{}
		m.states[shopID] = state
	}

	if !opts.ForceRefresh {
		inProgress := state.inProgress
		fresh := !state.lastSync.IsZero() && time.Since(state.lastSync) < m.cfg.SyncFreshnessWindow
		if inProgress || fresh {
			m.mu.Unlock()
			if inProgress {
				m.logger.Debug("sync already in progress for %s, returning backend data", shopID)
			} else {
				m.logger.Debug("sync for %s is fresh, returning backend data", shopID)
			}
			products, err := m.readBack(ctx, shopID, "")
			if err != nil {
				return nil, err
			}
			return &Outcome{Products: products, FromCache: true}, nil
		}
	}

	state.inProgress = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		state.inProgress = false
		m.mu.Unlock()
	}()

	token, err := m.tokens.AccessToken(shopID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("no session for shop %s", shopID)
	}

	fetched, err := m.fetchCatalog(ctx, shopID, token, limit)
	if err != nil {
		return nil, err
	}

	// An empty catalog is a valid outcome, not an error.
	if len(fetched) == 0 {
		return &Outcome{}, nil
	}

	records := make([]models.ProductRecord, len(fetched))
	for i := range fetched {
		records[i] = Normalize(shopID, &fetched[i])
	}

	report := m.writeBatches(ctx, records)

	// The timestamp is stamped after the write pass even if some per-product
	// writes failed: the pass happened.
	m.mu.Lock()
	state.lastSync = time.Now()
	m.mu.Unlock()

	products, err := m.readBack(ctx, shopID, "")
	if err != nil {
		return nil, err
	}

	m.publishSynced(ctx, shopID, report)

	return &Outcome{Products: products, Report: report}, nil
}

// ResyncProduct runs the fetch-normalize-write-readback pipeline for a single
// product.
func (m *Manager) ResyncProduct(ctx context.Context, shopID, productID string) (*Outcome, error) {
	token, err := m.tokens.AccessToken(shopID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("no session for shop %s", shopID)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.SyncTimeout)
	product, err := m.catalog.FetchProduct(fetchCtx, shopID, token, productID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("catalog fetch failed for product %s: %w", productID, err)
	}

	record := Normalize(shopID, product)
	report := m.writeBatches(ctx, []models.ProductRecord{record})

	products, err := m.readBack(ctx, shopID, record.ProductID)
	if err != nil {
		return nil, err
	}

	return &Outcome{Products: products, Report: report}, nil
}

// Status reports the advisory sync state for a shop.
func (m *Manager) Status(shopID string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.states[shopID]
	if state == nil {
		return Status{}
	}

	status := Status{InProgress: state.inProgress}
	if !state.lastSync.IsZero() {
		lastSync := state.lastSync
		status.LastSync = &lastSync
		status.IsRecent = time.Since(lastSync) < m.cfg.SyncFreshnessWindow
	}
	return status
}

// fetchCatalog pages through the catalog until limit products are collected
// or the catalog is exhausted.
func (m *Manager) fetchCatalog(ctx context.Context, shopID, token string, limit int) ([]shopify.Product, error) {
	var fetched []shopify.Product
	after := ""

	for len(fetched) < limit {
		pageSize := m.cfg.SyncPageSize
		if remaining := limit - len(fetched); remaining < pageSize {
			pageSize = remaining
		}

		pageCtx, cancel := context.WithTimeout(ctx, m.cfg.SyncTimeout)
		page, err := m.catalog.FetchProducts(pageCtx, shopID, token, pageSize, after)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("catalog fetch failed: %w", err)
		}

		fetched = append(fetched, page.Products...)
		if !page.HasNextPage || len(page.Products) == 0 {
			break
		}
		after = page.EndCursor
	}

	return fetched, nil
}

// writeBatches pushes records in fixed-size batches, with at most
// SyncBatchConcurrency writes in flight at once. Every write in a batch is
// awaited; failures are collected per product and never abort the pass.
func (m *Manager) writeBatches(ctx context.Context, records []models.ProductRecord) Report {
	batchSize := m.cfg.SyncBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	concurrency := m.cfg.SyncBatchConcurrency
	if concurrency <= 0 {
		concurrency = batchSize
	}
	sem := make(chan struct{}, concurrency)

	var report Report
	var reportMu sync.Mutex

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		var wg sync.WaitGroup
		for _, record := range records[start:end] {
			wg.Add(1)
			sem <- struct{}{}
			go func(record models.ProductRecord) {
				defer func() { <-sem }()
				defer wg.Done()

				writeCtx, cancel := context.WithTimeout(ctx, m.cfg.SyncTimeout)
				defer cancel()

				if err := m.backend.SyncProduct(writeCtx, record); err != nil {
					m.logger.Error("failed to sync product %s: %v", record.ProductID, err)
					reportMu.Lock()
					report.Failed++
					report.Errors = append(report.Errors, ProductError{
						ProductID: record.ProductID,
						Error:     err.Error(),
					})
					reportMu.Unlock()
					return
				}

				reportMu.Lock()
				report.Successful++
				reportMu.Unlock()
			}(record)
		}
		wg.Wait()
	}

	return report
}

func (m *Manager) readBack(ctx context.Context, shopID, productID string) ([]models.ProductRecord, error) {
	readCtx, cancel := context.WithTimeout(ctx, m.cfg.SyncTimeout)
	defer cancel()

	products, err := m.backend.GetProducts(readCtx, shopID, productID)
	if err != nil {
		return nil, fmt.Errorf("backend read failed: %w", err)
	}
	return products, nil
}

// publishSynced emits the sync completion event; publish failures are logged,
// never fatal.
func (m *Manager) publishSynced(ctx context.Context, shopID string, report Report) {
	if m.publisher == nil {
		return
	}
	err := m.publisher.Publish(ctx, events.Event{
		Type:   events.TypeProductsSynced,
		ShopID: shopID,
		Data: map[string]interface{}{
			"successful": report.Successful,
			"failed":     report.Failed,
		},
	})
	if err != nil {
		m.logger.Error("failed to publish sync event for %s: %v", shopID, err)
	}
}
