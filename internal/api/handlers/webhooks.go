package handlers

import (
	"encoding/json"
	"net/http"

	"linkback/internal/attribution"
	"linkback/internal/logger"
	"linkback/internal/services/shopify"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	tracker *attribution.Tracker
	logger  *logger.Logger
}

func NewWebhookHandler(tracker *attribution.Tracker, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		tracker: tracker,
		logger:  logger,
	}
}

// Orders handles the order webhook topics. Once the payload is syntactically
// valid the platform always gets a 200 back, even when downstream attribution
// fails, so it never enters a retry/backoff storm. Only a missing shop domain
// is a client error.
func (h *WebhookHandler) Orders(c *gin.Context) {
	topic := c.GetHeader("X-Shopify-Topic")
	shopDomain := c.GetHeader("X-Shopify-Shop-Domain")

	if shopDomain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop domain header"})
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	var order shopify.OrderPayload
	if err := json.Unmarshal(payload, &order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	ctx := c.Request.Context()

	switch topic {
	case "orders/create", "orders/paid":
		attributed, err := h.tracker.ProcessOrder(ctx, shopDomain, &order)
		if err != nil {
			h.logger.Error("Failed to process order %d: %v", order.ID, err)
			c.JSON(http.StatusOK, gin.H{"attributed": false, "error": "internal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"attributed": attributed})

	case "orders/updated", "refunds/create":
		if err := h.tracker.HandleOrderStatusChange(ctx, shopDomain, &order, "", order.FinancialStatus); err != nil {
			h.logger.Error("Failed to handle status change for order %d: %v", order.ID, err)
			c.JSON(http.StatusOK, gin.H{"updated": false, "error": "internal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": true})

	case "orders/fulfilled":
		if err := h.tracker.HandleOrderStatusChange(ctx, shopDomain, &order, order.FinancialStatus, "fulfilled"); err != nil {
			h.logger.Error("Failed to handle fulfillment for order %d: %v", order.ID, err)
			c.JSON(http.StatusOK, gin.H{"updated": false, "error": "internal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": true})

	default:
		h.logger.Debug("Unhandled webhook topic: %s", topic)
		c.JSON(http.StatusOK, gin.H{"message": "Webhook received but not processed"})
	}
}
