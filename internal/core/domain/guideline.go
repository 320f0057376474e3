package domain

// LengthRule bounds a free-text field.
type LengthRule struct {
	MinLength int `yaml:"min_length" json:"min_length"`
	MaxLength int `yaml:"max_length" json:"max_length"`
}

// BulletRule bounds the bullet point list.
type BulletRule struct {
	MaxCount  int `yaml:"max_count" json:"max_count"`
	MaxLength int `yaml:"max_length" json:"max_length"`
}

// ImageRule bounds the image list.
type ImageRule struct {
	MinCount       int      `yaml:"min_count" json:"min_count"`
	MaxCount       int      `yaml:"max_count" json:"max_count"`
	AllowedFormats []string `yaml:"allowed_formats" json:"allowed_formats"`
}

// AttributeRule names the fields a marketplace requires or recommends.
type AttributeRule struct {
	Required    []string `yaml:"required" json:"required"`
	Recommended []string `yaml:"recommended" json:"recommended"`
}

// MarketplaceGuideline is the per-marketplace structural and policy
// configuration. Instances are read-only after registry construction and
// safe to share across concurrent pipeline runs.
type MarketplaceGuideline struct {
	Name            string        `yaml:"name" json:"name"`
	Title           LengthRule    `yaml:"title" json:"title"`
	Description     LengthRule    `yaml:"description" json:"description"`
	BulletPoints    BulletRule    `yaml:"bullet_points" json:"bullet_points"`
	Images          ImageRule     `yaml:"images" json:"images"`
	Attributes      AttributeRule `yaml:"attributes" json:"attributes"`
	ProhibitedTerms []string      `yaml:"prohibited_terms" json:"prohibited_terms"`
	KeyPoints       []string      `yaml:"key_points" json:"key_points"`
}
