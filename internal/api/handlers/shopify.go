package handlers

import (
	"net/http"
	"time"

	"linkback/internal/config"
	"linkback/internal/database"
	"linkback/internal/logger"
	"linkback/internal/models"
	"linkback/internal/services/shopify"

	"github.com/gin-gonic/gin"
)

type ShopifyHandler struct {
	sessions     *database.SessionStore
	logger       *logger.Logger
	config       *config.Config
	oauthService *shopify.OAuthService
}

func NewShopifyHandler(sessions *database.SessionStore, logger *logger.Logger, config *config.Config) *ShopifyHandler {
	return &ShopifyHandler{
		sessions:     sessions,
		logger:       logger,
		config:       config,
		oauthService: shopify.NewOAuthService(config, logger),
	}
}

// Install initiates the Shopify OAuth flow
func (h *ShopifyHandler) Install(c *gin.Context) {
	var request struct {
		ShopDomain  string `json:"shop_domain" binding:"required"`
		RedirectURI string `json:"redirect_uri" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authURL, state, err := h.oauthService.GenerateAuthURL(request.ShopDomain, request.RedirectURI)
	if err != nil {
		h.logger.Error("Failed to generate auth URL: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authorization URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auth_url": authURL,
		"state":    state,
		"message":  "Redirect user to the auth_url to complete OAuth flow",
	})
}

// Callback handles the OAuth callback
func (h *ShopifyHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	shop := c.Query("shop")

	if code == "" || state == "" || shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}

	tokenResp, err := h.oauthService.ExchangeCodeForToken(shop, code)
	if err != nil {
		h.logger.Error("Failed to exchange code for token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	record := &models.Shop{
		Domain:      shop,
		AccessToken: tokenResp.AccessToken,
		Scope:       tokenResp.Scope,
		InstalledAt: time.Now(),
	}

	if err := h.sessions.UpsertShop(record); err != nil {
		h.logger.Error("Failed to save shop: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save shop"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shop connected successfully",
		"shop_id": record.ID,
		"domain":  record.Domain,
	})
}
