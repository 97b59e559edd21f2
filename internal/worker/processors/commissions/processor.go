package commissions

import (
	"context"
	"fmt"

	"linkback/internal/commission"
	"linkback/internal/logger"
	"linkback/internal/models"
)

// BackendClient is the slice of the system-of-record API the processor needs.
type BackendClient interface {
	GetProducts(ctx context.Context, shopID, productID string) ([]models.ProductRecord, error)
	SyncCommission(ctx context.Context, record models.CommissionRecord) error
}

// Processor pre-computes a commission rate for every synced product so the
// dashboard reads assignments instead of resolving on the fly.
type Processor struct {
	backend BackendClient
	logger  *logger.Logger
}

func New(backend BackendClient, logger *logger.Logger) *Processor {
	return &Processor{
		backend: backend,
		logger:  logger,
	}
}

// Precompute resolves and pushes a rate for each of the shop's products.
// Per-product push failures are logged and counted, not fatal.
func (p *Processor) Precompute(ctx context.Context, shopID string) error {
	products, err := p.backend.GetProducts(ctx, shopID, "")
	if err != nil {
		return fmt.Errorf("failed to read products for %s: %w", shopID, err)
	}

	var failed int
	for _, product := range products {
		result := commission.ResolveRate(descriptor(product))

		record := models.CommissionRecord{
			ShopID:      shopID,
			ProductID:   product.ProductID,
			Category:    result.Category,
			Subcategory: result.Subcategory,
			Rate:        result.Rate,
			IsDefault:   result.IsDefault,
		}

		if err := p.backend.SyncCommission(ctx, record); err != nil {
			p.logger.Error("failed to sync commission for product %s: %v", product.ProductID, err)
			failed++
		}
	}

	p.logger.Info("commission precompute for %s: %d products, %d failed", shopID, len(products), failed)
	return nil
}

func descriptor(product models.ProductRecord) commission.ProductInput {
	input := commission.ProductInput{
		Category: product.Category,
		Title:    product.Title,
		Vendor:   product.Vendor,
		Tags:     product.Tags,
	}
	for _, variant := range product.Variants {
		input.Variants = append(input.Variants, commission.VariantInput{
			Price: fmt.Sprintf("%.2f", variant.Price),
		})
	}
	return input
}
