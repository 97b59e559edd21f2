package shopify

import (
	"strings"
	"time"
)

// Product is a storefront catalog product as returned by the Admin GraphQL
// API.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Status      string    `json:"status"`
	ProductType string    `json:"productType"`
	Vendor      string    `json:"vendor"`
	Tags        []string  `json:"tags"`
	Variants    []Variant `json:"variants"`
	Images      []Image   `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Variant struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventoryQuantity"`
}

type Image struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

// ProductPage is one page of the paginated catalog.
type ProductPage struct {
	Products    []Product
	HasNextPage bool
	EndCursor   string
}

// NumericID strips the gid:// prefix from a GraphQL global id, leaving the
// platform-native numeric id as a string.
func NumericID(gid string) string {
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}

// OrderPayload is the order webhook body, REST-shaped.
type OrderPayload struct {
	ID              int64           `json:"id"`
	Email           string          `json:"email"`
	Currency        string          `json:"currency"`
	FinancialStatus string          `json:"financial_status"`
	CreatedAt       time.Time       `json:"created_at"`
	LineItems       []OrderLineItem `json:"line_items"`
	NoteAttributes  []NoteAttribute `json:"note_attributes"`
	Refunds         []Refund        `json:"refunds"`
}

type OrderLineItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	Title     string `json:"title"`
	Vendor    string `json:"vendor"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Refund struct {
	ID           int64               `json:"id"`
	Transactions []RefundTransaction `json:"transactions"`
}

type RefundTransaction struct {
	Amount string `json:"amount"`
	Kind   string `json:"kind"`
}
