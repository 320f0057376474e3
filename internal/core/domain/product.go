package domain

import (
	"strings"
	"time"
)

type ProductImage struct {
	URL      string `json:"url"`
	AltText  string `json:"alt_text,omitempty"`
	Position int    `json:"position"`
	IsMain   bool   `json:"is_main"`
}

// Product is the typed core of an imported listing record. Anything the
// source CSV/API carries beyond the fixed schema lands in Attributes.
type Product struct {
	ID           string            `json:"id"`
	Title        string            `json:"title,omitempty"`
	Description  string            `json:"description,omitempty"`
	BulletPoints []string          `json:"bullet_points,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	Images       []ProductImage    `json:"images,omitempty"`
	Brand        string            `json:"brand,omitempty"`
	Category     string            `json:"category,omitempty"`
	Price        string            `json:"price,omitempty"`
	Material     string            `json:"material,omitempty"`
	Condition    string            `json:"condition,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	CreatedAt    time.Time         `json:"created_at,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at,omitempty"`
}

// Clone returns a deep copy. Pipeline stages never mutate a caller's product
// in place; they work on their own copy and hand back a new one.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	out := *p
	out.BulletPoints = append([]string(nil), p.BulletPoints...)
	out.Keywords = append([]string(nil), p.Keywords...)
	out.Images = append([]ProductImage(nil), p.Images...)
	if p.Attributes != nil {
		out.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			out.Attributes[k] = v
		}
	}
	return &out
}

// FieldPresent reports whether a guideline-named field carries a usable
// value. Sequence fields count as present only when non-empty.
func (p *Product) FieldPresent(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "title":
		return strings.TrimSpace(p.Title) != ""
	case "description":
		return strings.TrimSpace(p.Description) != ""
	case "bullet_points", "bullets":
		for _, b := range p.BulletPoints {
			if strings.TrimSpace(b) != "" {
				return true
			}
		}
		return false
	case "keywords":
		return len(p.Keywords) > 0
	case "images":
		return len(p.Images) > 0
	case "brand":
		return strings.TrimSpace(p.Brand) != ""
	case "category":
		return strings.TrimSpace(p.Category) != ""
	case "price":
		return strings.TrimSpace(p.Price) != ""
	case "material":
		return strings.TrimSpace(p.Material) != ""
	case "condition":
		return strings.TrimSpace(p.Condition) != ""
	default:
		v, ok := p.Attributes[name]
		return ok && strings.TrimSpace(v) != ""
	}
}

// Attribute looks up an attribute value case-insensitively.
func (p *Product) Attribute(name string) string {
	if v, ok := p.Attributes[name]; ok {
		return v
	}
	lower := strings.ToLower(name)
	for k, v := range p.Attributes {
		if strings.ToLower(k) == lower {
			return v
		}
	}
	return ""
}
