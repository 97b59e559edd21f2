package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linkback/internal/attribution"
	"linkback/internal/config"
	"linkback/internal/logger"
	"linkback/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttributionBackend struct {
	clicks  []models.Click
	sales   []models.SaleRecord
	updates []models.SaleStatusUpdate
}

func (f *fakeAttributionBackend) GetSmartlink(ctx context.Context, trackID string) (*models.Smartlink, error) {
	return nil, nil
}

func (f *fakeAttributionBackend) GetRecentClicks(ctx context.Context, shopID string, since time.Time) ([]models.Click, error) {
	return f.clicks, nil
}

func (f *fakeAttributionBackend) RecordSale(ctx context.Context, sale models.SaleRecord) error {
	f.sales = append(f.sales, sale)
	return nil
}

func (f *fakeAttributionBackend) UpdateSaleStatus(ctx context.Context, update models.SaleStatusUpdate) error {
	f.updates = append(f.updates, update)
	return nil
}

func newWebhookRouter(backend *fakeAttributionBackend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("error")
	cfg := &config.Config{ClickLookbackHours: 48, ClickAttributionWindowHours: 24}
	tracker := attribution.NewTracker(backend, nil, cfg, log)
	handler := NewWebhookHandler(tracker, log)

	router := gin.New()
	router.POST("/webhooks/orders", handler.Orders)
	return router
}

func postWebhook(router *gin.Engine, topic, shopDomain, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/webhooks/orders", bytes.NewBufferString(body))
	if topic != "" {
		req.Header.Set("X-Shopify-Topic", topic)
	}
	if shopDomain != "" {
		req.Header.Set("X-Shopify-Shop-Domain", shopDomain)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOrders_MissingShopDomainIsClientError(t *testing.T) {
	router := newWebhookRouter(&fakeAttributionBackend{})

	w := postWebhook(router, "orders/create", "", `{"id": 1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrders_InvalidPayloadIsClientError(t *testing.T) {
	router := newWebhookRouter(&fakeAttributionBackend{})

	w := postWebhook(router, "orders/create", "shop1.myshopify.com", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrders_UnattributedOrderStillAcks(t *testing.T) {
	router := newWebhookRouter(&fakeAttributionBackend{})

	body := `{"id": 1001, "created_at": "2026-03-01T12:00:00Z", "line_items": [{"product_id": 42, "title": "Widget", "quantity": 1, "price": "10"}]}`
	w := postWebhook(router, "orders/create", "shop1.myshopify.com", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"attributed":false`)
}

func TestOrders_StaleTrackIDAcksUnattributed(t *testing.T) {
	router := newWebhookRouter(&fakeAttributionBackend{})

	body := fmt.Sprintf(
		`{"id": 1001, "created_at": %q, "note_attributes": [{"name": "track_id", "value": "trk_gone"}], "line_items": [{"product_id": 42, "title": "Widget", "quantity": 1, "price": "10"}]}`,
		time.Now().Format(time.RFC3339))
	w := postWebhook(router, "orders/create", "shop1.myshopify.com", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"attributed":false`)
	assert.NotContains(t, w.Body.String(), "error")
}

func TestOrders_AttributedOrder(t *testing.T) {
	backend := &fakeAttributionBackend{
		clicks: []models.Click{{
			TrackID:     "trk_1",
			AffiliateID: "aff_1",
			ProductID:   "42",
			ClickedAt:   time.Now().Add(-1 * time.Hour),
		}},
	}
	router := newWebhookRouter(backend)

	body := fmt.Sprintf(
		`{"id": 1001, "currency": "USD", "created_at": %q, "line_items": [{"product_id": 42, "title": "Widget", "quantity": 1, "price": "10"}]}`,
		time.Now().Format(time.RFC3339))
	w := postWebhook(router, "orders/create", "shop1.myshopify.com", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"attributed":true`)
	require.Len(t, backend.sales, 1)
	assert.Equal(t, "trk_1", backend.sales[0].TrackID)
}

func TestOrders_StatusUpdateTopic(t *testing.T) {
	backend := &fakeAttributionBackend{}
	router := newWebhookRouter(backend)

	body := `{"id": 1001, "financial_status": "refunded", "refunds": [{"transactions": [{"amount": "12.00", "kind": "refund"}]}]}`
	w := postWebhook(router, "orders/updated", "shop1.myshopify.com", body)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, backend.updates, 1)
	assert.Equal(t, "refunded", backend.updates[0].Status)
	assert.Equal(t, 12.0, backend.updates[0].RefundedAmount)
}

func TestOrders_UnhandledTopicAcks(t *testing.T) {
	router := newWebhookRouter(&fakeAttributionBackend{})

	w := postWebhook(router, "customers/create", "shop1.myshopify.com", `{"id": 5}`)

	assert.Equal(t, http.StatusOK, w.Code)
}
