package handlers

import (
	"net/http"

	"linkback/internal/commission"
	"linkback/internal/logger"

	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	logger *logger.Logger
}

func NewCommissionHandler(logger *logger.Logger) *CommissionHandler {
	return &CommissionHandler{logger: logger}
}

// Categories lists every rate table entry plus the default.
func (h *CommissionHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": commission.AllCategories()})
}

// Resolve computes the rate and commission value for a posted product
// descriptor.
func (h *CommissionHandler) Resolve(c *gin.Context) {
	var product commission.ProductInput
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": commission.ResolveValue(product)})
}
