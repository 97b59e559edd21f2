package syncer

import (
	"strconv"
	"strings"

	"linkback/internal/models"
	"linkback/internal/services/shopify"
)

const (
	maxVariants = 10
	maxImages   = 5
)

// Normalize converts a catalog product into the backend record shape:
// platform-native ids become canonical strings, prices become decimals, tags
// are trimmed, and variants/images are capped.
func Normalize(shopID string, product *shopify.Product) models.ProductRecord {
	record := models.ProductRecord{
		ProductID: shopify.NumericID(product.ID),
		ShopID:    shopID,
		Title:     product.Title,
		Handle:    product.Handle,
		Status:    strings.ToLower(product.Status),
		Category:  product.ProductType,
		Vendor:    product.Vendor,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}

	for _, tag := range product.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			record.Tags = append(record.Tags, t)
		}
	}

	variants := product.Variants
	if len(variants) > maxVariants {
		variants = variants[:maxVariants]
	}
	for _, variant := range variants {
		price, _ := strconv.ParseFloat(strings.TrimSpace(variant.Price), 64)
		quantity := variant.InventoryQuantity
		if quantity < 0 {
			quantity = 0
		}
		record.Variants = append(record.Variants, models.VariantRecord{
			VariantID:         shopify.NumericID(variant.ID),
			Title:             variant.Title,
			Price:             price,
			SKU:               variant.SKU,
			InventoryQuantity: quantity,
		})
	}

	images := product.Images
	if len(images) > maxImages {
		images = images[:maxImages]
	}
	for _, image := range images {
		record.Images = append(record.Images, models.ImageRecord{
			ImageID: shopify.NumericID(image.ID),
			Src:     image.URL,
			Alt:     image.AltText,
		})
	}

	return record
}
