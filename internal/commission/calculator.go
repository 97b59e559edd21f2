package commission

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ProductInput carries the descriptive product fields the resolver matches
// against the rate table. Prices are strings as delivered by the platform;
// anything unparseable is treated as zero.
type ProductInput struct {
	Category string         `json:"category"`
	Title    string         `json:"title"`
	Vendor   string         `json:"vendor"`
	Tags     []string       `json:"tags"`
	Price    string         `json:"price"`
	Variants []VariantInput `json:"variants"`
}

type VariantInput struct {
	Price string `json:"price"`
}

// Result is a resolved commission rate, optionally with a computed value.
type Result struct {
	Rate        float64 `json:"rate"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	IsDefault   bool    `json:"is_default"`
	Price       float64 `json:"price"`
	Value       float64 `json:"value"`
}

// CategoryEntry is one (category, subcategory, rate) triple for reference
// display.
type CategoryEntry struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Rate        float64 `json:"rate"`
	IsDefault   bool    `json:"is_default,omitempty"`
}

// ResolveRate maps a product's descriptive fields to a commission rate.
// Matching rules are tried in precedence order (category label, tags, title,
// vendor, fuzzy keywords); within a rule the table is scanned in declaration
// order and the first satisfied pair wins. It never returns an error: a
// genuine no-match yields the default rate with subcategory "Uncategorized",
// an internal fault yields it with subcategory "Error".
func ResolveRate(p ProductInput) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Rate:        DefaultRate,
				Category:    DefaultCategory,
				Subcategory: ErrorSubcategory,
				IsDefault:   true,
			}
		}
	}()

	category := normalize(p.Category)
	title := normalize(p.Title)
	vendor := normalize(p.Vendor)

	tags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		if t := normalize(tag); t != "" {
			tags = append(tags, t)
		}
	}

	for _, rule := range newMatchRules(category, title, vendor, tags) {
		for _, entry := range rateTable {
			cat := strings.ToLower(entry.Name)
			for _, sub := range entry.Subcategories {
				if rule(cat, strings.ToLower(sub.Name)) {
					return Result{
						Rate:        sub.Rate,
						Category:    entry.Name,
						Subcategory: sub.Name,
					}
				}
			}
		}
	}

	return Result{
		Rate:        DefaultRate,
		Category:    DefaultCategory,
		Subcategory: DefaultSubcategory,
		IsDefault:   true,
	}
}

// newMatchRules builds the ordered match rules for one product's normalized
// fields. A var so tests can inject a faulting rule set.
var newMatchRules = func(category, title, vendor string, tags []string) []func(cat, sub string) bool {
	return []func(cat, sub string) bool{
		// Exact: category label equals or contains a table name.
		func(cat, sub string) bool {
			return labelMatches(category, cat) || labelMatches(category, sub)
		},
		// Tags.
		func(cat, sub string) bool {
			for _, tag := range tags {
				if labelMatches(tag, cat) || labelMatches(tag, sub) {
					return true
				}
			}
			return false
		},
		// Title substring.
		func(cat, sub string) bool {
			return substringMatches(title, cat) || substringMatches(title, sub)
		},
		// Vendor substring.
		func(cat, sub string) bool {
			return substringMatches(vendor, cat) || substringMatches(vendor, sub)
		},
		// Fuzzy keyword dictionary over category+title+tags.
		func(cat, sub string) bool {
			haystack := category + " " + title + " " + strings.Join(tags, " ")
			return keywordMatches(haystack, cat) || keywordMatches(haystack, sub)
		},
	}
}

// ResolveValue resolves the rate and computes the commission value from the
// product's own price (explicit price first, then first variant, then zero).
func ResolveValue(p ProductInput) Result {
	return ResolveValueAt(p, ExtractPrice(p))
}

// ResolveValueAt is ResolveValue with an explicit price override.
func ResolveValueAt(p ProductInput, price float64) Result {
	result := ResolveRate(p)
	result.Price = price
	result.Value = round2(price * result.Rate / 100)
	return result
}

// ExtractPrice pulls a usable price out of the product: the explicit price
// field if parseable, otherwise the first variant's. Unparseable input
// coerces to zero rather than failing.
func ExtractPrice(p ProductInput) float64 {
	if v, ok := parsePrice(p.Price); ok {
		return v
	}
	if len(p.Variants) > 0 {
		if v, ok := parsePrice(p.Variants[0].Price); ok {
			return v
		}
	}
	return 0
}

// AllCategories enumerates every rate table entry plus the synthetic default,
// sorted by category name ascending.
func AllCategories() []CategoryEntry {
	entries := make([]CategoryEntry, 0, 32)
	for _, entry := range rateTable {
		for _, sub := range entry.Subcategories {
			entries = append(entries, CategoryEntry{
				Category:    entry.Name,
				Subcategory: sub.Name,
				Rate:        sub.Rate,
			})
		}
	}
	entries = append(entries, CategoryEntry{
		Category:    DefaultCategory,
		Subcategory: DefaultSubcategory,
		Rate:        DefaultRate,
		IsDefault:   true,
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Category < entries[j].Category
	})
	return entries
}

// RateFor looks up a rate by literal category and subcategory strings,
// tolerating "&" and whitespace-run differences.
func RateFor(category, subcategory string) (float64, bool) {
	catKey := normalizeKey(category)
	subKey := normalizeKey(subcategory)
	for _, entry := range rateTable {
		if normalizeKey(entry.Name) != catKey {
			continue
		}
		for _, sub := range entry.Subcategories {
			if normalizeKey(sub.Name) == subKey {
				return sub.Rate, true
			}
		}
	}
	return 0, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var keyRunRe = regexp.MustCompile(`[&\s]+`)

// normalizeKey additionally collapses "&" and whitespace runs to single
// spaces, for literal category string lookups.
func normalizeKey(s string) string {
	return strings.TrimSpace(keyRunRe.ReplaceAllString(normalize(s), " "))
}

// labelMatches reports whether a normalized label equals the table name or
// contains it as a substring.
func labelMatches(label, name string) bool {
	if label == "" || name == "" {
		return false
	}
	return label == name || strings.Contains(label, name)
}

func substringMatches(text, name string) bool {
	if text == "" || name == "" {
		return false
	}
	return strings.Contains(text, name)
}

func keywordMatches(haystack, name string) bool {
	for _, synonym := range fuzzyKeywords[name] {
		if strings.Contains(haystack, synonym) {
			return true
		}
	}
	return false
}

func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
