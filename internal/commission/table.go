package commission

// Category groups subcategory rates under one storefront category label.
type Category struct {
	Name          string
	Subcategories []Subcategory
}

type Subcategory struct {
	Name string
	Rate float64
}

const (
	// DefaultRate applies when no category can be matched.
	DefaultRate        = 15.0
	DefaultCategory    = "Other"
	DefaultSubcategory = "Uncategorized"

	// ErrorSubcategory marks a default-rate result caused by an internal
	// fault rather than a genuine no-match.
	ErrorSubcategory = "Error"
)

// rateTable is the static commission reference data. Iteration order matters:
// the resolver is first-match, not best-match.
var rateTable = []Category{
	{Name: "Phones & Tablets", Subcategories: []Subcategory{
		{Name: "Phones", Rate: 4},
		{Name: "Tablets", Rate: 5},
		{Name: "Accessories", Rate: 8},
	}},
	{Name: "Electronics", Subcategories: []Subcategory{
		{Name: "Televisions", Rate: 5},
		{Name: "Audio", Rate: 6},
		{Name: "Cameras", Rate: 6},
		{Name: "Computing", Rate: 5},
	}},
	{Name: "Fashion", Subcategories: []Subcategory{
		{Name: "Clothing", Rate: 10},
		{Name: "Shoes", Rate: 10},
		{Name: "Bags", Rate: 12},
		{Name: "Jewelry", Rate: 12},
	}},
	{Name: "Beauty & Health", Subcategories: []Subcategory{
		{Name: "Makeup", Rate: 10},
		{Name: "Fragrance", Rate: 10},
		{Name: "Personal Care", Rate: 8},
	}},
	{Name: "Home & Kitchen", Subcategories: []Subcategory{
		{Name: "Appliances", Rate: 6},
		{Name: "Furniture", Rate: 8},
		{Name: "Cookware", Rate: 9},
		{Name: "Decor", Rate: 10},
	}},
	{Name: "Sports & Outdoors", Subcategories: []Subcategory{
		{Name: "Equipment", Rate: 8},
		{Name: "Activewear", Rate: 10},
	}},
	{Name: "Baby & Kids", Subcategories: []Subcategory{
		{Name: "Toys", Rate: 10},
		{Name: "Baby Gear", Rate: 8},
	}},
	{Name: "Books & Media", Subcategories: []Subcategory{
		{Name: "Books", Rate: 12},
		{Name: "Games", Rate: 8},
	}},
	{Name: "Groceries", Subcategories: []Subcategory{
		{Name: "Food", Rate: 5},
		{Name: "Beverages", Rate: 5},
	}},
}

// fuzzyKeywords maps lower-cased category and subcategory names to domain
// synonyms used by the last-resort matching rule.
var fuzzyKeywords = map[string][]string{
	"phones":           {"phone", "mobile", "smartphone", "iphone", "android", "galaxy", "pixel"},
	"tablets":          {"tablet", "ipad", "kindle fire"},
	"phones & tablets": {"phone", "tablet", "mobile"},
	"accessories":      {"case", "charger", "cable", "screen protector", "power bank"},
	"televisions":      {"tv", "television", "oled", "smart tv"},
	"audio":            {"headphone", "earbud", "speaker", "soundbar", "airpods"},
	"cameras":          {"camera", "dslr", "mirrorless", "gopro", "webcam"},
	"computing":        {"laptop", "notebook", "desktop", "macbook", "monitor", "keyboard"},
	"clothing":         {"shirt", "dress", "jacket", "hoodie", "jeans", "t-shirt", "apparel"},
	"shoes":            {"shoe", "sneaker", "boot", "sandal", "trainer"},
	"bags":             {"bag", "backpack", "handbag", "purse", "wallet", "luggage"},
	"jewelry":          {"necklace", "bracelet", "ring", "earring", "watch"},
	"makeup":           {"lipstick", "mascara", "foundation", "eyeshadow", "cosmetic"},
	"fragrance":        {"perfume", "cologne", "eau de"},
	"personal care":    {"shampoo", "lotion", "skincare", "toothbrush", "razor"},
	"appliances":       {"blender", "microwave", "fridge", "refrigerator", "washer", "vacuum"},
	"furniture":        {"sofa", "chair", "table", "desk", "shelf", "bed"},
	"cookware":         {"pan", "pot", "skillet", "knife set", "bakeware"},
	"decor":            {"lamp", "rug", "curtain", "vase", "cushion"},
	"equipment":        {"dumbbell", "treadmill", "bike", "bicycle", "tent", "racket"},
	"activewear":       {"leggings", "yoga", "running", "gym", "sportswear"},
	"toys":             {"toy", "lego", "puzzle", "doll", "action figure"},
	"baby gear":        {"stroller", "crib", "diaper", "car seat"},
	"books":            {"book", "novel", "paperback", "hardcover"},
	"games":            {"game", "playstation", "xbox", "nintendo", "board game"},
	"food":             {"snack", "chocolate", "pasta", "cereal", "organic"},
	"beverages":        {"coffee", "tea", "juice", "soda", "water"},
}
