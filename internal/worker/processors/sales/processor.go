package sales

import (
	"linkback/internal/events"
	"linkback/internal/logger"
)

// Processor keeps an audit trail of sale events coming off the topic.
type Processor struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Processor {
	return &Processor{logger: logger}
}

func (p *Processor) Process(event events.Event) error {
	switch event.Type {
	case events.TypeSaleRecorded:
		p.logger.Info("sale recorded: shop=%s order=%v affiliate=%v line_items=%v failed=%v",
			event.ShopID, event.Data["order_id"], event.Data["affiliate_id"],
			event.Data["line_items"], event.Data["failed"])
	case events.TypeSaleStatusChanged:
		p.logger.Info("sale status changed: shop=%s order=%v %v -> %v refunded=%v",
			event.ShopID, event.Data["order_id"], event.Data["from"],
			event.Data["to"], event.Data["refunded"])
	}
	return nil
}
