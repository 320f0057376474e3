package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/guidelines"
)

// ValidationConfig carries the hand-tuned deduction weights. The defaults
// come from production and are preserved as-is; deductions must stay
// monotone (more issues never raise the score).
type ValidationConfig struct {
	MissingFieldPenalty int
	CriticalPenalty     int
	WarningPenalty      int
	SuggestionPenalty   int
	ValidThreshold      int
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MissingFieldPenalty: 10,
		CriticalPenalty:     10,
		WarningPenalty:      5,
		SuggestionPenalty:   1,
		ValidThreshold:      70,
	}
}

var placeholderValues = map[string]bool{
	"tbd":           true,
	"n/a":           true,
	"none":          true,
	"unknown":       true,
	"not specified": true,
}

var placeholderImageTokens = []string{"placeholder", "sample", "missing", "noimage", "no-image", "default"}

var descriptionPlaceholders = []string{"lorem ipsum", "add description here", "insert description", "description goes here"}

// FieldValidator checks a product against a marketplace's structural
// rules. The computation is deterministic and side-effect free.
type FieldValidator struct {
	registry *guidelines.Registry
	cfg      ValidationConfig
}

func NewFieldValidator(registry *guidelines.Registry, cfg ValidationConfig) *FieldValidator {
	if cfg.ValidThreshold <= 0 {
		cfg = DefaultValidationConfig()
	}
	return &FieldValidator{registry: registry, cfg: cfg}
}

func (v *FieldValidator) Validate(product *domain.Product, marketplace string) domain.ValidationReport {
	guideline := v.registry.Get(marketplace)

	missing := missingRequiredFields(product, guideline)
	issues := make([]domain.Issue, 0, 8)
	for _, field := range missing {
		issues = append(issues, domain.Issue{
			Field:          field,
			Severity:       domain.SeverityCritical,
			Message:        fmt.Sprintf("required field %q is missing or empty", field),
			Recommendation: fmt.Sprintf("provide a value for %q before listing on %s", field, guideline.Name),
		})
	}

	structural := make([]domain.Issue, 0, 8)
	structural = append(structural, v.checkTitle(product, guideline)...)
	structural = append(structural, v.checkDescription(product, guideline)...)
	structural = append(structural, v.checkBullets(product, guideline)...)
	structural = append(structural, v.checkImages(product, guideline)...)
	structural = append(structural, v.checkPrice(product)...)
	structural = append(structural, v.checkAttributes(product, guideline)...)
	issues = append(issues, structural...)

	score := 100 - v.cfg.MissingFieldPenalty*len(missing)
	for _, issue := range structural {
		switch issue.Severity {
		case domain.SeverityCritical:
			score -= v.cfg.CriticalPenalty
		case domain.SeverityWarning:
			score -= v.cfg.WarningPenalty
		default:
			score -= v.cfg.SuggestionPenalty
		}
	}
	score = clampScore(score)

	return domain.ValidationReport{
		IsValid:       score >= v.cfg.ValidThreshold && len(missing) == 0,
		Issues:        issues,
		MissingFields: missing,
		Score:         score,
	}
}

// missingRequiredFields is shared with the compliance fallback path.
func missingRequiredFields(product *domain.Product, guideline domain.MarketplaceGuideline) []string {
	missing := make([]string, 0, len(guideline.Attributes.Required))
	for _, field := range guideline.Attributes.Required {
		if !product.FieldPresent(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

func (v *FieldValidator) checkTitle(product *domain.Product, guideline domain.MarketplaceGuideline) []domain.Issue {
	title := strings.TrimSpace(product.Title)
	if title == "" {
		return nil
	}
	var issues []domain.Issue
	length := len([]rune(title))

	if length > guideline.Title.MaxLength {
		issues = append(issues, domain.Issue{
			Field:          "title",
			Severity:       domain.SeverityCritical,
			Message:        fmt.Sprintf("title is %d characters, over the %d character limit", length, guideline.Title.MaxLength),
			Recommendation: "shorten the title; front-load brand and key attribute",
		})
	} else if length < guideline.Title.MinLength {
		issues = append(issues, domain.Issue{
			Field:          "title",
			Severity:       domain.SeverityWarning,
			Message:        fmt.Sprintf("title is %d characters, under the recommended minimum of %d", length, guideline.Title.MinLength),
			Recommendation: "expand the title with brand, product type and a distinguishing attribute",
		})
	}

	if length > 10 && isAllCaps(title) {
		issues = append(issues, domain.Issue{
			Field:          "title",
			Severity:       domain.SeverityWarning,
			Message:        "title is written in all capitals",
			Recommendation: "use sentence or title case",
		})
	}
	if strings.Count(title, "!")+strings.Count(title, "?") > 2 {
		issues = append(issues, domain.Issue{
			Field:          "title",
			Severity:       domain.SeverityWarning,
			Message:        "title contains excessive exclamation or question marks",
			Recommendation: "remove promotional punctuation",
		})
	}
	return issues
}

func (v *FieldValidator) checkDescription(product *domain.Product, guideline domain.MarketplaceGuideline) []domain.Issue {
	desc := strings.TrimSpace(product.Description)
	if desc == "" {
		return nil
	}
	var issues []domain.Issue
	length := len([]rune(desc))

	if length > guideline.Description.MaxLength {
		issues = append(issues, domain.Issue{
			Field:          "description",
			Severity:       domain.SeverityCritical,
			Message:        fmt.Sprintf("description is %d characters, over the %d character limit", length, guideline.Description.MaxLength),
			Recommendation: "trim the description below the marketplace limit",
		})
	} else if length < guideline.Description.MinLength {
		issues = append(issues, domain.Issue{
			Field:          "description",
			Severity:       domain.SeverityWarning,
			Message:        fmt.Sprintf("description is %d characters, under the recommended minimum of %d", length, guideline.Description.MinLength),
			Recommendation: "describe features, materials and typical use cases",
		})
	}

	lower := strings.ToLower(desc)
	for _, token := range descriptionPlaceholders {
		if strings.Contains(lower, token) {
			issues = append(issues, domain.Issue{
				Field:          "description",
				Severity:       domain.SeverityCritical,
				Message:        fmt.Sprintf("description contains placeholder text %q", token),
				Recommendation: "replace placeholder text with real product copy",
			})
			break
		}
	}

	if length > 300 && !strings.Contains(desc, "\n\n") {
		issues = append(issues, domain.Issue{
			Field:          "description",
			Severity:       domain.SeverityWarning,
			Message:        "long description has no paragraph breaks",
			Recommendation: "split the description into paragraphs for readability",
		})
	}
	return issues
}

func (v *FieldValidator) checkBullets(product *domain.Product, guideline domain.MarketplaceGuideline) []domain.Issue {
	if len(product.BulletPoints) == 0 {
		return nil
	}
	var issues []domain.Issue

	if len(product.BulletPoints) > guideline.BulletPoints.MaxCount {
		issues = append(issues, domain.Issue{
			Field:          "bullet_points",
			Severity:       domain.SeverityWarning,
			Message:        fmt.Sprintf("%d bullet points exceed the limit of %d", len(product.BulletPoints), guideline.BulletPoints.MaxCount),
			Recommendation: "keep the strongest bullets and merge the rest",
		})
	}
	for i, bullet := range product.BulletPoints {
		if len([]rune(bullet)) > guideline.BulletPoints.MaxLength {
			issues = append(issues, domain.Issue{
				Field:          "bullet_points",
				Severity:       domain.SeverityWarning,
				Message:        fmt.Sprintf("bullet %d is over the %d character limit", i+1, guideline.BulletPoints.MaxLength),
				Recommendation: "shorten the bullet to one crisp benefit statement",
			})
		}
	}

	seen := make(map[string]bool, len(product.BulletPoints))
	for _, bullet := range product.BulletPoints {
		key := strings.ToLower(strings.TrimSpace(bullet))
		if key == "" {
			continue
		}
		if seen[key] {
			issues = append(issues, domain.Issue{
				Field:          "bullet_points",
				Severity:       domain.SeverityCritical,
				Message:        "duplicate bullet points detected",
				Recommendation: "make every bullet cover a distinct feature or benefit",
			})
			break
		}
		seen[key] = true
	}
	return issues
}

func (v *FieldValidator) checkImages(product *domain.Product, guideline domain.MarketplaceGuideline) []domain.Issue {
	var issues []domain.Issue

	if len(product.Images) > 0 && len(product.Images) < guideline.Images.MinCount {
		issues = append(issues, domain.Issue{
			Field:          "images",
			Severity:       domain.SeverityCritical,
			Message:        fmt.Sprintf("%d images provided, marketplace requires at least %d", len(product.Images), guideline.Images.MinCount),
			Recommendation: "add product photos from multiple angles",
		})
	}
	if len(product.Images) > guideline.Images.MaxCount {
		issues = append(issues, domain.Issue{
			Field:          "images",
			Severity:       domain.SeverityWarning,
			Message:        fmt.Sprintf("%d images exceed the limit of %d", len(product.Images), guideline.Images.MaxCount),
			Recommendation: "keep the most informative images",
		})
	}

	for _, img := range product.Images {
		lower := strings.ToLower(img.URL)
		for _, token := range placeholderImageTokens {
			if strings.Contains(lower, token) {
				issues = append(issues, domain.Issue{
					Field:          "images",
					Severity:       domain.SeverityCritical,
					Message:        fmt.Sprintf("image URL looks like a placeholder (%q)", token),
					Recommendation: "upload real product photography",
				})
				break
			}
		}
		if strings.HasPrefix(lower, "data:") {
			continue
		}
		if ext := imageExtension(lower); ext != "" && !containsFold(guideline.Images.AllowedFormats, ext) {
			issues = append(issues, domain.Issue{
				Field:          "images",
				Severity:       domain.SeverityWarning,
				Message:        fmt.Sprintf("image format %q is not accepted by %s", ext, guideline.Name),
				Recommendation: fmt.Sprintf("convert the image to one of: %s", strings.Join(guideline.Images.AllowedFormats, ", ")),
			})
		}
	}
	return issues
}

func (v *FieldValidator) checkPrice(product *domain.Product) []domain.Issue {
	raw := strings.TrimSpace(product.Price)
	if raw == "" {
		return nil
	}
	cleaned := strings.TrimLeft(raw, "$€£¥ ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return []domain.Issue{{
			Field:          "price",
			Severity:       domain.SeverityCritical,
			Message:        fmt.Sprintf("price %q is not numeric", raw),
			Recommendation: "use a plain decimal price",
		}}
	}
	if price <= 0 {
		return []domain.Issue{{
			Field:          "price",
			Severity:       domain.SeverityCritical,
			Message:        "price must be greater than zero",
			Recommendation: "set a positive price",
		}}
	}
	if price > 100000 {
		return []domain.Issue{{
			Field:          "price",
			Severity:       domain.SeverityWarning,
			Message:        "price is unusually high",
			Recommendation: "double-check the price for a misplaced decimal point",
		}}
	}
	return nil
}

func (v *FieldValidator) checkAttributes(product *domain.Product, guideline domain.MarketplaceGuideline) []domain.Issue {
	var issues []domain.Issue

	for _, field := range guideline.Attributes.Recommended {
		if !product.FieldPresent(field) {
			issues = append(issues, domain.Issue{
				Field:          field,
				Severity:       domain.SeverityWarning,
				Message:        fmt.Sprintf("recommended field %q is not set", field),
				Recommendation: fmt.Sprintf("filling %q improves search placement on %s", field, guideline.Name),
			})
		}
	}

	for name, value := range product.Attributes {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" || placeholderValues[trimmed] {
			issues = append(issues, domain.Issue{
				Field:          name,
				Severity:       domain.SeverityWarning,
				Message:        fmt.Sprintf("attribute %q carries a placeholder value %q", name, value),
				Recommendation: "replace the placeholder with the real attribute value or remove it",
			})
		}
	}
	return issues
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func imageExtension(url string) string {
	trimmed := url
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	dot := strings.LastIndexByte(trimmed, '.')
	if dot < 0 || dot == len(trimmed)-1 {
		return ""
	}
	ext := trimmed[dot+1:]
	if strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

func containsFold(list []string, needle string) bool {
	for _, item := range list {
		if strings.EqualFold(item, needle) {
			return true
		}
	}
	return false
}
