package models

import "time"

// ProductRecord is the normalized product shape pushed to and read back from
// the backend system of record. Platform-native numeric ids are carried as
// strings.
type ProductRecord struct {
	ProductID string          `json:"product_id"`
	ShopID    string          `json:"shop_id"`
	Title     string          `json:"title"`
	Handle    string          `json:"handle"`
	Status    string          `json:"status"`
	Category  string          `json:"category"`
	Vendor    string          `json:"vendor"`
	Tags      []string        `json:"tags"`
	Variants  []VariantRecord `json:"variants"`
	Images    []ImageRecord   `json:"images"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type VariantRecord struct {
	VariantID         string  `json:"variant_id"`
	Title             string  `json:"title"`
	Price             float64 `json:"price"`
	SKU               string  `json:"sku,omitempty"`
	InventoryQuantity int     `json:"inventory_quantity"`
}

type ImageRecord struct {
	ImageID string `json:"image_id"`
	Src     string `json:"src"`
	Alt     string `json:"alt,omitempty"`
}

// CommissionRecord is a pre-computed rate assignment for a synced product.
type CommissionRecord struct {
	ShopID      string  `json:"shop_id"`
	ProductID   string  `json:"product_id"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Rate        float64 `json:"rate"`
	IsDefault   bool    `json:"is_default"`
}
