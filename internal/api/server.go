package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"linkback/internal/api/handlers"
	"linkback/internal/api/middleware"
	"linkback/internal/attribution"
	"linkback/internal/config"
	"linkback/internal/database"
	"linkback/internal/events"
	"linkback/internal/logger"
	"linkback/internal/services/backend"
	"linkback/internal/services/shopify"
	"linkback/internal/syncer"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, publisher *events.Publisher) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Services
	sessions := database.NewSessionStore(db.DB)
	catalogClient := shopify.NewClient(cfg.ShopifyAPIVersion, logger)
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendAPIKey, logger)

	// events.Publisher is nil-safe behind the syncer/tracker interfaces: a
	// nil publisher just disables emission.
	var syncPublisher syncer.Publisher
	var salePublisher attribution.Publisher
	if publisher != nil {
		syncPublisher = publisher
		salePublisher = publisher
	}

	manager := syncer.NewManager(catalogClient, backendClient, sessions, syncPublisher, cfg, logger)
	tracker := attribution.NewTracker(backendClient, salePublisher, cfg, logger)

	// Handlers
	shopifyHandler := handlers.NewShopifyHandler(sessions, logger, cfg)
	syncHandler := handlers.NewSyncHandler(manager, logger)
	commissionHandler := handlers.NewCommissionHandler(logger)
	webhookHandler := handlers.NewWebhookHandler(tracker, logger)
	clickHandler := handlers.NewClickHandler(backendClient, cfg, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Shopify Integration
		shopifyRoutes := v1.Group("/shopify")
		{
			shopifyRoutes.POST("/install", shopifyHandler.Install)
			shopifyRoutes.GET("/callback", shopifyHandler.Callback)
		}

		// Product sync
		shops := v1.Group("/shops/:shop")
		{
			shops.POST("/sync", syncHandler.Sync)
			shops.GET("/sync/status", syncHandler.Status)
			shops.POST("/products/:id/resync", syncHandler.Resync)
		}

		// Commissions
		commissions := v1.Group("/commissions")
		{
			commissions.GET("/categories", commissionHandler.Categories)
			commissions.POST("/resolve", commissionHandler.Resolve)
		}
	}

	// Smart-link redirect
	router.GET("/l/:trackId", clickHandler.Redirect)

	// Webhooks
	router.POST("/webhooks/orders", webhookHandler.Orders)

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
