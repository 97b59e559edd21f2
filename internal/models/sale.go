package models

import "time"

// SaleRecord is one attributed order line item with its resolved commission.
type SaleRecord struct {
	OrderID         string    `json:"order_id"`
	ShopID          string    `json:"shop_id"`
	ProductID       string    `json:"product_id"`
	VariantID       string    `json:"variant_id,omitempty"`
	Title           string    `json:"title"`
	Quantity        int       `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
	Currency        string    `json:"currency"`
	CommissionRate  float64   `json:"commission_rate"`
	CommissionValue float64   `json:"commission_value"`
	Category        string    `json:"category"`
	Subcategory     string    `json:"subcategory"`
	IsDefaultRate   bool      `json:"is_default_rate"`
	CustomerEmail   string    `json:"customer_email,omitempty"`
	FinancialStatus string    `json:"financial_status"`
	OrderedAt       time.Time `json:"ordered_at"`
	TrackID         string    `json:"track_id"`
	AffiliateID     string    `json:"affiliate_id"`
}

// SaleStatusUpdate carries an order status transition to the backend.
type SaleStatusUpdate struct {
	OrderID        string  `json:"order_id"`
	ShopID         string  `json:"shop_id"`
	Status         string  `json:"status"`
	RefundedAmount float64 `json:"refunded_amount,omitempty"`
}
