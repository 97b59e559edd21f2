package syncer

import (
	"fmt"
	"testing"

	"linkback/internal/services/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	product := &shopify.Product{
		ID:          "gid://shopify/Product/12345",
		Title:       "Widget",
		Handle:      "widget",
		Status:      "ACTIVE",
		ProductType: "Gadgets",
		Vendor:      "Acme",
		Tags:        []string{" sale ", "", "new"},
		Variants: []shopify.Variant{
			{ID: "gid://shopify/ProductVariant/111", Price: "19.99", SKU: "W-1", InventoryQuantity: 5},
			{ID: "gid://shopify/ProductVariant/112", Price: "not-a-price", InventoryQuantity: -3},
		},
		Images: []shopify.Image{
			{ID: "gid://shopify/ProductImage/201", URL: "https://cdn.example.com/a.jpg", AltText: "front"},
		},
	}

	record := Normalize("shop1", product)

	assert.Equal(t, "12345", record.ProductID)
	assert.Equal(t, "shop1", record.ShopID)
	assert.Equal(t, "active", record.Status)
	assert.Equal(t, "Gadgets", record.Category)
	assert.Equal(t, []string{"sale", "new"}, record.Tags)

	require.Len(t, record.Variants, 2)
	assert.Equal(t, "111", record.Variants[0].VariantID)
	assert.Equal(t, 19.99, record.Variants[0].Price)
	// Unparseable prices and negative inventory coerce to zero.
	assert.Equal(t, 0.0, record.Variants[1].Price)
	assert.Equal(t, 0, record.Variants[1].InventoryQuantity)

	require.Len(t, record.Images, 1)
	assert.Equal(t, "201", record.Images[0].ImageID)
	assert.Equal(t, "https://cdn.example.com/a.jpg", record.Images[0].Src)
}

func TestNormalize_CapsVariantsAndImages(t *testing.T) {
	product := &shopify.Product{ID: "gid://shopify/Product/1"}
	for i := 0; i < 15; i++ {
		product.Variants = append(product.Variants, shopify.Variant{
			ID:    fmt.Sprintf("gid://shopify/ProductVariant/%d", i),
			Price: "1.00",
		})
	}
	for i := 0; i < 8; i++ {
		product.Images = append(product.Images, shopify.Image{
			ID: fmt.Sprintf("gid://shopify/ProductImage/%d", i),
		})
	}

	record := Normalize("shop1", product)

	assert.Len(t, record.Variants, 10)
	assert.Len(t, record.Images, 5)
}
