package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"linkback/internal/logger"
	"linkback/internal/models"
)

// Client is a thin wrapper over the affiliate backend's REST API, the system
// of record for products, commissions, clicks and sales.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, apiKey string, logger *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SyncProduct pushes one normalized product record.
func (c *Client) SyncProduct(ctx context.Context, product models.ProductRecord) error {
	return c.post(ctx, "/products/sync", product, nil)
}

// GetProducts reads the product set for a shop, optionally filtered to one
// product id.
func (c *Client) GetProducts(ctx context.Context, shopID, productID string) ([]models.ProductRecord, error) {
	query := url.Values{"shop_id": {shopID}}
	if productID != "" {
		query.Set("product_id", productID)
	}

	var resp struct {
		Success bool                   `json:"success"`
		Data    []models.ProductRecord `json:"data"`
	}
	if err := c.get(ctx, "/products", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SyncCommission pushes a pre-computed commission assignment.
func (c *Client) SyncCommission(ctx context.Context, record models.CommissionRecord) error {
	return c.post(ctx, "/commissions/sync", record, nil)
}

func (c *Client) GetCommissions(ctx context.Context, shopID string) ([]models.CommissionRecord, error) {
	var resp struct {
		Data []models.CommissionRecord `json:"data"`
	}
	if err := c.get(ctx, "/commissions", url.Values{"shop_id": {shopID}}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// RecordSale persists one attributed order line item.
func (c *Client) RecordSale(ctx context.Context, sale models.SaleRecord) error {
	return c.post(ctx, "/sales", sale, nil)
}

// UpdateSaleStatus pushes an order status transition.
func (c *Client) UpdateSaleStatus(ctx context.Context, update models.SaleStatusUpdate) error {
	return c.post(ctx, "/sales/status", update, nil)
}

// TrackClick records a smart-link follow.
func (c *Client) TrackClick(ctx context.Context, click models.Click) error {
	return c.post(ctx, "/clicks", click, nil)
}

// GetSmartlink resolves a track id to its smart link. An unknown or retired
// track id answers (nil, nil); only transport and decode failures error.
func (c *Client) GetSmartlink(ctx context.Context, trackID string) (*models.Smartlink, error) {
	var resp struct {
		Success bool              `json:"success"`
		Data    *models.Smartlink `json:"data"`
	}
	if err := c.get(ctx, "/smartlinks/"+url.PathEscape(trackID), nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, nil
	}
	return resp.Data, nil
}

// GetRecentClicks reads a shop's clicks since the given instant, newest
// first.
func (c *Client) GetRecentClicks(ctx context.Context, shopID string, since time.Time) ([]models.Click, error) {
	query := url.Values{
		"shop_id": {shopID},
		"since":   {since.UTC().Format(time.RFC3339)},
	}

	var resp struct {
		Data []models.Click `json:"data"`
	}
	if err := c.get(ctx, "/clicks", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend request failed: %d - %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
