package handlers

import (
	"net/http"
	"strconv"

	"linkback/internal/logger"
	"linkback/internal/syncer"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	manager *syncer.Manager
	logger  *logger.Logger
}

func NewSyncHandler(manager *syncer.Manager, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		manager: manager,
		logger:  logger,
	}
}

// Sync runs (or short-circuits to) a catalog sync and returns the backend's
// product set.
func (h *SyncHandler) Sync(c *gin.Context) {
	shopID := c.Param("shop")

	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	outcome, err := h.manager.SyncAndFetch(c.Request.Context(), shopID, syncer.Options{
		ForceRefresh: force,
		Limit:        limit,
	})
	if err != nil {
		h.logger.Error("Sync failed for %s: %v", shopID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       outcome.Products,
		"report":     outcome.Report,
		"from_cache": outcome.FromCache,
	})
}

// Status reports the shop's advisory sync state.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Status(c.Param("shop")))
}

// Resync re-runs the pipeline for a single product.
func (h *SyncHandler) Resync(c *gin.Context) {
	shopID := c.Param("shop")
	productID := c.Param("id")

	outcome, err := h.manager.ResyncProduct(c.Request.Context(), shopID, productID)
	if err != nil {
		h.logger.Error("Resync failed for %s/%s: %v", shopID, productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Resync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   outcome.Products,
		"report": outcome.Report,
	})
}
