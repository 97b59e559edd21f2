package processors

import (
	"context"

	"linkback/internal/config"
	"linkback/internal/events"
	"linkback/internal/logger"
	"linkback/internal/services/backend"
	"linkback/internal/worker/processors/commissions"
	"linkback/internal/worker/processors/sales"
)

type EventProcessor struct {
	config      *config.Config
	logger      *logger.Logger
	commissions *commissions.Processor
	sales       *sales.Processor
}

func NewEventProcessor(cfg *config.Config, logger *logger.Logger) *EventProcessor {
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendAPIKey, logger)

	return &EventProcessor{
		config:      cfg,
		logger:      logger,
		commissions: commissions.New(backendClient, logger),
		sales:       sales.New(logger),
	}
}

func (ep *EventProcessor) Process(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.TypeProductsSynced:
		return ep.commissions.Precompute(ctx, event.ShopID)
	case events.TypeSaleRecorded, events.TypeSaleStatusChanged:
		return ep.sales.Process(event)
	default:
		ep.logger.Debug("unhandled event type: %s", event.Type)
		return nil
	}
}
