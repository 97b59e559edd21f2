package handlers

import (
	"context"
	"net/http"
	"time"

	"linkback/internal/config"
	"linkback/internal/logger"
	"linkback/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClickBackend is the slice of the system-of-record API the redirect needs.
type ClickBackend interface {
	GetSmartlink(ctx context.Context, trackID string) (*models.Smartlink, error)
	TrackClick(ctx context.Context, click models.Click) error
}

type ClickHandler struct {
	backend ClickBackend
	config  *config.Config
	logger  *logger.Logger
}

func NewClickHandler(backend ClickBackend, cfg *config.Config, logger *logger.Logger) *ClickHandler {
	return &ClickHandler{
		backend: backend,
		config:  cfg,
		logger:  logger,
	}
}

// Redirect resolves a smart link, records the click, and sends the visitor on
// to the destination. A click-recording failure never blocks the redirect.
func (h *ClickHandler) Redirect(c *gin.Context) {
	trackID := c.Param("trackId")

	smartlink, err := h.backend.GetSmartlink(c.Request.Context(), trackID)
	if err != nil {
		h.logger.Error("Smart link lookup failed for %s: %v", trackID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Lookup failed"})
		return
	}
	if smartlink == nil {
		h.logger.Debug("Unknown smart link %s", trackID)
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown link"})
		return
	}

	now := time.Now()
	click := models.Click{
		ClickID:     uuid.New().String(),
		TrackID:     smartlink.TrackID,
		ShopID:      smartlink.ShopID,
		ProductID:   smartlink.ProductID,
		AffiliateID: smartlink.AffiliateID,
		IP:          c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
		Referrer:    c.Request.Referer(),
		ClickedAt:   now,
		ExpiresAt:   now.Add(time.Duration(h.config.ClickAttributionWindowHours) * time.Hour),
	}

	if err := h.backend.TrackClick(c.Request.Context(), click); err != nil {
		h.logger.Error("Failed to record click %s: %v", click.ClickID, err)
	}

	c.Redirect(http.StatusFound, smartlink.DestinationURL)
}
