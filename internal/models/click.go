package models

import "time"

// Click is one smart-link follow, valid for attribution until ExpiresAt.
type Click struct {
	ClickID     string    `json:"click_id"`
	TrackID     string    `json:"track_id"`
	ShopID      string    `json:"shop_id"`
	ProductID   string    `json:"product_id,omitempty"` // empty for store-wide links
	AffiliateID string    `json:"affiliate_id"`
	IP          string    `json:"ip"`
	UserAgent   string    `json:"user_agent"`
	Referrer    string    `json:"referrer"`
	ClickedAt   time.Time `json:"clicked_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Smartlink is the tracked redirect a click originates from.
type Smartlink struct {
	TrackID        string `json:"track_id"`
	ShopID         string `json:"shop_id"`
	ProductID      string `json:"product_id,omitempty"`
	AffiliateID    string `json:"affiliate_id"`
	DestinationURL string `json:"destination_url"`
}
