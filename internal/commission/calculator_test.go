package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRate_PhoneByCategory(t *testing.T) {
	product := ProductInput{
		Category: "Phones",
		Title:    "iPhone 15",
	}

	result := ResolveRate(product)

	assert.Equal(t, "Phones & Tablets", result.Category)
	assert.Equal(t, "Phones", result.Subcategory)
	assert.Equal(t, 4.0, result.Rate)
	assert.False(t, result.IsDefault)
}

func TestResolveRate_Deterministic(t *testing.T) {
	product := ProductInput{
		Category: "Fashion",
		Title:    "Summer Dress",
		Tags:     []string{"clothing", "summer"},
	}

	first := ResolveRate(product)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ResolveRate(product))
	}
}

func TestResolveRate_InternalFaultFallsBackToError(t *testing.T) {
	original := newMatchRules
	defer func() { newMatchRules = original }()
	newMatchRules = func(category, title, vendor string, tags []string) []func(cat, sub string) bool {
		return []func(cat, sub string) bool{
			func(cat, sub string) bool { panic("rule blew up") },
		}
	}

	result := ResolveRate(ProductInput{Category: "Phones"})

	assert.Equal(t, DefaultRate, result.Rate)
	assert.Equal(t, DefaultCategory, result.Category)
	assert.Equal(t, ErrorSubcategory, result.Subcategory)
	assert.True(t, result.IsDefault)
}

func TestResolveRate_DefaultFallback(t *testing.T) {
	result := ResolveRate(ProductInput{})

	assert.Equal(t, DefaultRate, result.Rate)
	assert.True(t, result.IsDefault)
	assert.Equal(t, "Other", result.Category)
	assert.Equal(t, "Uncategorized", result.Subcategory)
}

// A tag hit on a later category must still beat a fuzzy hit on an earlier
// one: rules have precedence, the table order only breaks ties within a rule.
func TestResolveRate_RulePrecedenceOverTableOrder(t *testing.T) {
	product := ProductInput{
		Title: "galaxy case bundle", // fuzzy-matches Phones
		Tags:  []string{"books"},    // tag-matches Books & Media
	}

	result := ResolveRate(product)

	assert.Equal(t, "Books & Media", result.Category)
	assert.Equal(t, "Books", result.Subcategory)
}

// Two tag hits resolve to whichever pair comes first in the table.
func TestResolveRate_FirstMatchWithinRule(t *testing.T) {
	product := ProductInput{
		Tags: []string{"cameras", "books"},
	}

	result := ResolveRate(product)

	assert.Equal(t, "Electronics", result.Category)
	assert.Equal(t, "Cameras", result.Subcategory)
}

func TestResolveRate_VendorMatch(t *testing.T) {
	product := ProductInput{
		Title:  "Model X-200",
		Vendor: "Cookware Direct",
	}

	result := ResolveRate(product)

	assert.Equal(t, "Home & Kitchen", result.Category)
	assert.Equal(t, "Cookware", result.Subcategory)
}

func TestResolveRate_FuzzyTitleMatch(t *testing.T) {
	product := ProductInput{
		Title: "Wireless Earbud Pro",
	}

	result := ResolveRate(product)

	assert.Equal(t, "Electronics", result.Category)
	assert.Equal(t, "Audio", result.Subcategory)
}

func TestResolveValue_Rounding(t *testing.T) {
	product := ProductInput{
		Category: "Other stuff",
		Price:    "19.995",
	}

	result := ResolveValue(product)

	require.True(t, result.IsDefault)
	assert.Equal(t, 15.0, result.Rate)
	assert.Equal(t, 3.0, result.Value)
}

func TestResolveValue_EndToEnd(t *testing.T) {
	product := ProductInput{
		Category: "Phones",
		Title:    "iPhone 15",
		Price:    "999",
	}

	result := ResolveValue(product)

	assert.Equal(t, "Phones & Tablets", result.Category)
	assert.Equal(t, "Phones", result.Subcategory)
	assert.Equal(t, 4.0, result.Rate)
	assert.Equal(t, 39.96, result.Value)
	assert.False(t, result.IsDefault)
}

func TestExtractPrice(t *testing.T) {
	testCases := []struct {
		name     string
		product  ProductInput
		expected float64
	}{
		{
			name:     "explicit price wins",
			product:  ProductInput{Price: "12.50", Variants: []VariantInput{{Price: "99"}}},
			expected: 12.50,
		},
		{
			name:     "falls back to first variant",
			product:  ProductInput{Variants: []VariantInput{{Price: "42.00"}, {Price: "10"}}},
			expected: 42,
		},
		{
			name:     "non-numeric coerces to zero",
			product:  ProductInput{Price: "free", Variants: []VariantInput{{Price: "n/a"}}},
			expected: 0,
		},
		{
			name:     "empty product",
			product:  ProductInput{},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractPrice(tc.product))
		})
	}
}

func TestAllCategories(t *testing.T) {
	entries := AllCategories()

	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Category, entries[i].Category)
	}

	var foundDefault bool
	for _, entry := range entries {
		if entry.IsDefault {
			foundDefault = true
			assert.Equal(t, DefaultCategory, entry.Category)
			assert.Equal(t, DefaultSubcategory, entry.Subcategory)
			assert.Equal(t, DefaultRate, entry.Rate)
		}
	}
	assert.True(t, foundDefault, "synthetic default entry should be present")
}

func TestRateFor_LiteralLookup(t *testing.T) {
	rate, ok := RateFor("phones   &  tablets", "Phones")
	require.True(t, ok)
	assert.Equal(t, 4.0, rate)

	_, ok = RateFor("No Such Category", "Nothing")
	assert.False(t, ok)
}
