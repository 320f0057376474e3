package guidelines

import "github.com/sellerdesk/listing-pipeline/internal/core/domain"

// Builtin guideline tables. Length limits and required fields track each
// marketplace's public listing requirements loosely; prohibited terms mix
// marketplace policy phrases with generic unverifiable-claim language and
// are expected to be tuned per seller via the YAML overlay.
var builtin = []domain.MarketplaceGuideline{
	{
		Name:        "amazon",
		Title:       domain.LengthRule{MinLength: 10, MaxLength: 200},
		Description: domain.LengthRule{MinLength: 100, MaxLength: 2000},
		BulletPoints: domain.BulletRule{
			MaxCount:  5,
			MaxLength: 255,
		},
		Images: domain.ImageRule{
			MinCount:       1,
			MaxCount:       9,
			AllowedFormats: []string{"jpg", "jpeg", "png", "gif", "tif", "tiff"},
		},
		Attributes: domain.AttributeRule{
			Required:    []string{"title", "description", "bullet_points", "images", "brand", "price"},
			Recommended: []string{"material", "condition", "category"},
		},
		ProhibitedTerms: []string{
			"best seller", "best-selling", "top rated", "#1", "number one",
			"free shipping", "satisfaction guaranteed", "money back guarantee",
			"sale", "limited time offer",
		},
		KeyPoints: []string{
			"Lead the title with brand, then product line and key attribute.",
			"Bullet points should cover features and benefits, one per line.",
			"Main image on pure white background, no watermarks.",
		},
	},
	{
		Name:        "ebay",
		Title:       domain.LengthRule{MinLength: 10, MaxLength: 80},
		Description: domain.LengthRule{MinLength: 50, MaxLength: 4000},
		BulletPoints: domain.BulletRule{
			MaxCount:  10,
			MaxLength: 300,
		},
		Images: domain.ImageRule{
			MinCount:       1,
			MaxCount:       12,
			AllowedFormats: []string{"jpg", "jpeg", "png", "gif", "webp", "bmp", "tif", "tiff"},
		},
		Attributes: domain.AttributeRule{
			Required:    []string{"title", "description", "images", "price", "condition"},
			Recommended: []string{"brand", "category", "material"},
		},
		ProhibitedTerms: []string{
			"l@@k", "wow", "must see", "cheap", "rare!!!",
			"best on ebay", "giveaway",
		},
		KeyPoints: []string{
			"Titles are hard-capped at 80 characters; no promotional filler.",
			"Condition must be stated explicitly.",
		},
	},
	{
		Name:        "etsy",
		Title:       domain.LengthRule{MinLength: 10, MaxLength: 140},
		Description: domain.LengthRule{MinLength: 50, MaxLength: 5000},
		BulletPoints: domain.BulletRule{
			MaxCount:  8,
			MaxLength: 200,
		},
		Images: domain.ImageRule{
			MinCount:       1,
			MaxCount:       10,
			AllowedFormats: []string{"jpg", "jpeg", "png", "gif"},
		},
		Attributes: domain.AttributeRule{
			Required:    []string{"title", "description", "images", "price"},
			Recommended: []string{"material", "brand", "category"},
		},
		ProhibitedTerms: []string{
			"mass produced", "wholesale lot", "drop ship",
			"authentic designer", "inspired by",
		},
		KeyPoints: []string{
			"Emphasize handmade character, materials and process.",
			"First 40 title characters matter most for search.",
		},
	},
	{
		Name:        "shopify",
		Title:       domain.LengthRule{MinLength: 10, MaxLength: 255},
		Description: domain.LengthRule{MinLength: 100, MaxLength: 5000},
		BulletPoints: domain.BulletRule{
			MaxCount:  10,
			MaxLength: 300,
		},
		Images: domain.ImageRule{
			MinCount:       1,
			MaxCount:       250,
			AllowedFormats: []string{"jpg", "jpeg", "png", "gif", "webp", "heic"},
		},
		Attributes: domain.AttributeRule{
			Required:    []string{"title", "description", "images", "price"},
			Recommended: []string{"brand", "category", "material", "condition"},
		},
		ProhibitedTerms: []string{
			"click here", "buy now!!!", "guaranteed results",
		},
		KeyPoints: []string{
			"Descriptions double as page copy; structure with paragraphs.",
			"Keep titles under 70 characters for clean search snippets.",
		},
	},
	{
		Name:        "walmart",
		Title:       domain.LengthRule{MinLength: 10, MaxLength: 100},
		Description: domain.LengthRule{MinLength: 150, MaxLength: 4000},
		BulletPoints: domain.BulletRule{
			MaxCount:  10,
			MaxLength: 80,
		},
		Images: domain.ImageRule{
			MinCount:       2,
			MaxCount:       8,
			AllowedFormats: []string{"jpg", "jpeg", "png"},
		},
		Attributes: domain.AttributeRule{
			Required:    []string{"title", "description", "bullet_points", "images", "brand", "price"},
			Recommended: []string{"category", "material", "condition"},
		},
		ProhibitedTerms: []string{
			"free shipping", "rollback", "clearance",
			"best price", "lowest price",
		},
		KeyPoints: []string{
			"Titles follow Brand + Item + Key Attribute + Pack Size.",
			"Short bullet fragments, no terminal punctuation.",
		},
	},
}
