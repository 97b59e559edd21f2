package attribution

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"linkback/internal/commission"
	"linkback/internal/config"
	"linkback/internal/events"
	"linkback/internal/logger"
	"linkback/internal/models"
	"linkback/internal/services/shopify"
)

// trackAttributeNames are the order note attributes that carry an explicit
// track id; this path is authoritative over the heuristic match.
var trackAttributeNames = []string{"linkback_track_id", "track_id"}

// BackendClient is the slice of the system-of-record API the tracker needs.
type BackendClient interface {
	GetSmartlink(ctx context.Context, trackID string) (*models.Smartlink, error)
	GetRecentClicks(ctx context.Context, shopID string, since time.Time) ([]models.Click, error)
	RecordSale(ctx context.Context, sale models.SaleRecord) error
	UpdateSaleStatus(ctx context.Context, update models.SaleStatusUpdate) error
}

// Publisher is satisfied by events.Publisher; nil disables event emission.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Attribution names the affiliate credited for an order.
type Attribution struct {
	TrackID     string
	AffiliateID string
	ProductID   string // empty for store-wide links
}

// Tracker attributes inbound orders to affiliate clicks and records the
// commission owed per line item.
type Tracker struct {
	backend   BackendClient
	publisher Publisher
	cfg       *config.Config
	logger    *logger.Logger
	now       func() time.Time
}

func NewTracker(backend BackendClient, publisher Publisher, cfg *config.Config, logger *logger.Logger) *Tracker {
	return &Tracker{
		backend:   backend,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessOrder determines which affiliate, if any, should be credited for the
// order and records a sale per line item. Returns true iff an attribution was
// found; an unattributed order is a defined outcome, not an error.
func (t *Tracker) ProcessOrder(ctx context.Context, shopID string, order *shopify.OrderPayload) (bool, error) {
	attribution, err := t.FindAttribution(ctx, shopID, order)
	if err != nil {
		return false, err
	}
	if attribution == nil {
		t.logger.Debug("order %d for %s: no affiliate attribution", order.ID, shopID)
		return false, nil
	}

	t.recordLineItems(ctx, shopID, order, attribution)
	return true, nil
}

// FindAttribution tries the explicit track-id note attribute first, then
// falls back to a time-windowed scan of the shop's recent clicks.
func (t *Tracker) FindAttribution(ctx context.Context, shopID string, order *shopify.OrderPayload) (*Attribution, error) {
	if trackID := explicitTrackID(order); trackID != "" {
		smartlink, err := t.backend.GetSmartlink(ctx, trackID)
		if err != nil {
			return nil, fmt.Errorf("smartlink lookup failed for %s: %w", trackID, err)
		}
		if smartlink == nil {
			// A stale or retired track id is a miss, not a fault. The
			// explicit path stays authoritative: no heuristic fallback.
			t.logger.Debug("order %d: track id %s no longer resolves", order.ID, trackID)
			return nil, nil
		}
		return &Attribution{
			TrackID:     smartlink.TrackID,
			AffiliateID: smartlink.AffiliateID,
			ProductID:   smartlink.ProductID,
		}, nil
	}

	lookback := time.Duration(t.cfg.ClickLookbackHours) * time.Hour
	clicks, err := t.backend.GetRecentClicks(ctx, shopID, t.now().Add(-lookback))
	if err != nil {
		return nil, fmt.Errorf("recent click lookup failed: %w", err)
	}

	window := time.Duration(t.cfg.ClickAttributionWindowHours) * time.Hour
	orderedAt := order.CreatedAt

	for _, click := range clicks {
		elapsed := orderedAt.Sub(click.ClickedAt)
		if elapsed <= 0 || elapsed >= window {
			continue
		}
		// A click with no product id is a store-wide link and matches any
		// order; otherwise the product must appear among the line items.
		if click.ProductID != "" && !orderContainsProduct(order, click.ProductID) {
			continue
		}
		return &Attribution{
			TrackID:     click.TrackID,
			AffiliateID: click.AffiliateID,
			ProductID:   click.ProductID,
		}, nil
	}

	return nil, nil
}

// recordLineItems computes and persists a commission per line item. Items are
// settled independently: one failure never stops the rest.
func (t *Tracker) recordLineItems(ctx context.Context, shopID string, order *shopify.OrderPayload, attribution *Attribution) {
	var wg sync.WaitGroup
	var failedMu sync.Mutex
	failed := 0

	for _, item := range order.LineItems {
		wg.Add(1)
		go func(item shopify.OrderLineItem) {
			defer wg.Done()
			if err := t.recordSale(ctx, shopID, order, item, attribution); err != nil {
				t.logger.Error("order %d line %d: failed to record sale: %v", order.ID, item.ID, err)
				failedMu.Lock()
				failed++
				failedMu.Unlock()
			}
		}(item)
	}
	wg.Wait()

	if failed > 0 {
		t.logger.Error("order %d: %d of %d line items failed to record", order.ID, failed, len(order.LineItems))
	}

	t.publish(ctx, events.Event{
		Type:   events.TypeSaleRecorded,
		ShopID: shopID,
		Data: map[string]interface{}{
			"order_id":     strconv.FormatInt(order.ID, 10),
			"track_id":     attribution.TrackID,
			"affiliate_id": attribution.AffiliateID,
			"line_items":   len(order.LineItems),
			"failed":       failed,
		},
	})
}

func (t *Tracker) recordSale(ctx context.Context, shopID string, order *shopify.OrderPayload, item shopify.OrderLineItem, attribution *Attribution) error {
	// Synthetic descriptor from the line item; order lines carry no category
	// or tags, so the resolver works from title and vendor.
	descriptor := commission.ProductInput{
		Title:  item.Title,
		Vendor: item.Vendor,
		Price:  item.Price,
	}
	result := commission.ResolveValue(descriptor)

	sale := models.SaleRecord{
		OrderID:         strconv.FormatInt(order.ID, 10),
		ShopID:          shopID,
		ProductID:       strconv.FormatInt(item.ProductID, 10),
		VariantID:       strconv.FormatInt(item.VariantID, 10),
		Title:           item.Title,
		Quantity:        item.Quantity,
		UnitPrice:       result.Price,
		Currency:        order.Currency,
		CommissionRate:  result.Rate,
		CommissionValue: round2(result.Value * float64(item.Quantity)),
		Category:        result.Category,
		Subcategory:     result.Subcategory,
		IsDefaultRate:   result.IsDefault,
		CustomerEmail:   order.Email,
		FinancialStatus: order.FinancialStatus,
		OrderedAt:       order.CreatedAt,
		TrackID:         attribution.TrackID,
		AffiliateID:     attribution.AffiliateID,
	}

	return t.backend.RecordSale(ctx, sale)
}

// statusTransitions are the financial/fulfillment states that push a status
// update to the backend. Transitions never re-run attribution.
var statusTransitions = map[string]bool{
	"paid":               true,
	"partially_refunded": true,
	"refunded":           true,
	"fulfilled":          true,
}

// HandleOrderStatusChange forwards a status transition, carrying any refunded
// amount found on the payload.
func (t *Tracker) HandleOrderStatusChange(ctx context.Context, shopID string, order *shopify.OrderPayload, fromStatus, toStatus string) error {
	if fromStatus == toStatus || !statusTransitions[toStatus] {
		return nil
	}

	update := models.SaleStatusUpdate{
		OrderID:        strconv.FormatInt(order.ID, 10),
		ShopID:         shopID,
		Status:         toStatus,
		RefundedAmount: refundedAmount(order),
	}

	if err := t.backend.UpdateSaleStatus(ctx, update); err != nil {
		return fmt.Errorf("failed to update sale status for order %d: %w", order.ID, err)
	}

	t.publish(ctx, events.Event{
		Type:   events.TypeSaleStatusChanged,
		ShopID: shopID,
		Data: map[string]interface{}{
			"order_id": update.OrderID,
			"from":     fromStatus,
			"to":       toStatus,
			"refunded": update.RefundedAmount,
		},
	})
	return nil
}

func (t *Tracker) publish(ctx context.Context, event events.Event) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(ctx, event); err != nil {
		t.logger.Error("failed to publish %s event: %v", event.Type, err)
	}
}

func explicitTrackID(order *shopify.OrderPayload) string {
	for _, name := range trackAttributeNames {
		for _, attr := range order.NoteAttributes {
			if attr.Name == name && attr.Value != "" {
				return attr.Value
			}
		}
	}
	return ""
}

func orderContainsProduct(order *shopify.OrderPayload, productID string) bool {
	for _, item := range order.LineItems {
		if strconv.FormatInt(item.ProductID, 10) == productID {
			return true
		}
	}
	return false
}

func refundedAmount(order *shopify.OrderPayload) float64 {
	var total float64
	for _, refund := range order.Refunds {
		for _, tx := range refund.Transactions {
			if amount, err := strconv.ParseFloat(tx.Amount, 64); err == nil {
				total += amount
			}
		}
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
