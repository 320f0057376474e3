package usecase

import (
	"strings"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

type categoryClass string

const (
	categoryFurniture   categoryClass = "furniture"
	categoryClothing    categoryClass = "clothing"
	categoryElectronics categoryClass = "electronics"
	categoryGeneric     categoryClass = "generic"
)

var productTypeWords = []string{
	"sofa", "couch", "chair", "table", "desk", "bed", "shelf", "cabinet", "dresser", "bench", "stool", "ottoman",
	"shirt", "t-shirt", "dress", "jacket", "hoodie", "sweater", "jeans", "pants", "skirt", "coat", "shoes", "boots",
	"phone", "headphones", "earbuds", "speaker", "laptop", "tablet", "monitor", "keyboard", "camera", "charger", "mouse",
	"mug", "bottle", "lamp", "rug", "pillow", "blanket", "backpack", "wallet", "watch", "necklace", "ring", "bracelet",
}

// detectProductType scans title and category for a known product noun,
// falling back to the last word of the category.
func detectProductType(product *domain.Product) string {
	haystack := strings.ToLower(product.Title + " " + product.Category)
	for _, word := range productTypeWords {
		if containsTerm(haystack, word) {
			return word
		}
	}
	fields := strings.Fields(strings.TrimSpace(product.Category))
	if len(fields) > 0 {
		return strings.ToLower(fields[len(fields)-1])
	}
	return ""
}

func classifyCategory(product *domain.Product) categoryClass {
	haystack := strings.ToLower(product.Category + " " + product.Title)
	switch {
	case containsAny(haystack, "furniture", "sofa", "couch", "chair", "table", "desk", "bed", "shelf", "cabinet"):
		return categoryFurniture
	case containsAny(haystack, "clothing", "apparel", "shirt", "dress", "jacket", "hoodie", "jeans", "shoes", "fashion"):
		return categoryClothing
	case containsAny(haystack, "electronics", "phone", "laptop", "tablet", "headphones", "speaker", "camera", "monitor"):
		return categoryElectronics
	default:
		return categoryGeneric
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

var bulletTemplateTable = map[categoryClass][]string{
	categoryFurniture: {
		"Sturdy Construction: built on a solid frame that stands up to daily use",
		"Easy Assembly: arrives with clear instructions and all hardware included",
		"Space Conscious: proportioned to fit comfortably in apartments and smaller rooms",
		"Easy Care: surfaces wipe clean with a damp cloth",
		"Versatile Style: a neutral look that works across living rooms, bedrooms and offices",
	},
	categoryClothing: {
		"Comfortable Fit: cut for all-day wear without bunching or pinching",
		"Quality Fabric: soft, breathable material that holds its shape",
		"Easy Care: machine washable and quick to dry",
		"Versatile Wardrobe Piece: dresses up or down for any occasion",
		"True To Size: consult the size chart for the best fit",
	},
	categoryElectronics: {
		"Reliable Performance: consistent operation for work and entertainment",
		"Simple Setup: ready to use in minutes, no technical expertise needed",
		"Compact Design: a small footprint that travels well",
		"Wide Compatibility: works with the devices you already own",
		"Support Included: backed by responsive customer service",
	},
	categoryGeneric: {
		"Quality Materials: made from components selected for durability",
		"Thoughtful Design: practical details that make everyday use easier",
		"Easy Care: simple to clean and maintain",
		"Great Value: dependable performance at a fair price",
		"Satisfaction Focus: responsive support if anything falls short",
	},
}

func bulletTemplates(class categoryClass) []string {
	if templates, ok := bulletTemplateTable[class]; ok {
		return append([]string(nil), templates...)
	}
	return append([]string(nil), bulletTemplateTable[categoryGeneric]...)
}

var marketplaceBulletTable = map[string][]string{
	"amazon": {
		"Fast Delivery: ships quickly through the Amazon fulfillment network",
		"Easy Returns: covered by standard Amazon return policies",
	},
	"ebay": {
		"Accurate Listing: condition described honestly with detailed photos",
		"Secure Checkout: protected by eBay money back guarantee",
	},
	"etsy": {
		"Made With Care: prepared and packed by a small shop",
		"Gift Ready: a thoughtful option for birthdays and holidays",
	},
	"walmart": {
		"Everyday Value: quality you can count on at a low price",
		"Convenient Pickup: available for delivery or store pickup",
	},
	"shopify": {
		"Direct From Seller: shipped straight from our own store",
		"Responsive Support: questions answered by the people who made it",
	},
}

func marketplaceBullets(marketplace string) []string {
	if bullets, ok := marketplaceBulletTable[strings.ToLower(marketplace)]; ok {
		return append([]string(nil), bullets...)
	}
	return nil
}
