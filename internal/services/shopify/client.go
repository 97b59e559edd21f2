package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"linkback/internal/logger"
)

type Client struct {
	apiVersion string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(apiVersion string, logger *logger.Logger) *Client {
	return &Client{
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

const productFields = `
	id
	title
	handle
	status
	productType
	vendor
	tags
	createdAt
	updatedAt
	variants(first: 10) {
		edges { node { id title price sku inventoryQuantity } }
	}
	images(first: 5) {
		edges { node { id url altText } }
	}`

// FetchProducts fetches one page of products from the shop's catalog.
func (c *Client) FetchProducts(ctx context.Context, shopDomain, accessToken string, first int, after string) (*ProductPage, error) {
	query := fmt.Sprintf(`query products($first: Int!, $after: String) {
		products(first: $first, after: $after) {
			pageInfo { hasNextPage endCursor }
			edges { node { %s } }
		}
	}`, productFields)

	variables := map[string]interface{}{"first": first}
	if after != "" {
		variables["after"] = after
	}

	var envelope struct {
		Data struct {
			Products struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node productNode `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		} `json:"data"`
	}

	if err := c.execute(ctx, shopDomain, accessToken, query, variables, &envelope); err != nil {
		return nil, err
	}

	page := &ProductPage{
		HasNextPage: envelope.Data.Products.PageInfo.HasNextPage,
		EndCursor:   envelope.Data.Products.PageInfo.EndCursor,
	}
	for _, edge := range envelope.Data.Products.Edges {
		page.Products = append(page.Products, edge.Node.toProduct())
	}

	return page, nil
}

// FetchProduct fetches a single product by its numeric id.
func (c *Client) FetchProduct(ctx context.Context, shopDomain, accessToken, productID string) (*Product, error) {
	query := fmt.Sprintf(`query product($id: ID!) {
		product(id: $id) { %s }
	}`, productFields)

	gid := productID
	if !strings.HasPrefix(gid, "gid://") {
		gid = "gid://shopify/Product/" + productID
	}

	var envelope struct {
		Data struct {
			Product *productNode `json:"product"`
		} `json:"data"`
	}

	if err := c.execute(ctx, shopDomain, accessToken, query, map[string]interface{}{"id": gid}, &envelope); err != nil {
		return nil, err
	}

	if envelope.Data.Product == nil {
		return nil, fmt.Errorf("product %s not found", productID)
	}

	product := envelope.Data.Product.toProduct()
	return &product, nil
}

// execute runs one GraphQL request against the shop's Admin API. A GraphQL
// error envelope is treated the same as a transport failure.
func (c *Client) execute(ctx context.Context, shopDomain, accessToken, query string, variables map[string]interface{}, out interface{}) error {
	url := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", fullDomain(shopDomain), c.apiVersion)

	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var errEnvelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &errEnvelope); err == nil && len(errEnvelope.Errors) > 0 {
		return fmt.Errorf("GraphQL error: %s", errEnvelope.Errors[0].Message)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func fullDomain(shopDomain string) string {
	if strings.Contains(shopDomain, ".") {
		return shopDomain
	}
	return shopDomain + ".myshopify.com"
}

// productNode is the raw GraphQL node with connection envelopes still in
// place.
type productNode struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Status      string    `json:"status"`
	ProductType string    `json:"productType"`
	Vendor      string    `json:"vendor"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Variants    struct {
		Edges []struct {
			Node Variant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Images struct {
		Edges []struct {
			Node Image `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

func (n *productNode) toProduct() Product {
	product := Product{
		ID:          n.ID,
		Title:       n.Title,
		Handle:      n.Handle,
		Status:      n.Status,
		ProductType: n.ProductType,
		Vendor:      n.Vendor,
		Tags:        n.Tags,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
	for _, edge := range n.Variants.Edges {
		product.Variants = append(product.Variants, edge.Node)
	}
	for _, edge := range n.Images.Edges {
		product.Images = append(product.Images, edge.Node)
	}
	return product
}
