package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/core/ports"
	"github.com/sellerdesk/listing-pipeline/internal/guidelines"
)

const (
	titleRebuildLimit = 150
	targetBulletCount = 5
	minTitleLength    = 10
	minDescLength     = 50
)

var (
	featureSignal = regexp.MustCompile(`(?i)(feature|benefit|advantage|quality|design)`)
	useCaseSignal = regexp.MustCompile(`(?i)(use|ideal for|perfect for|made of|made from|material)`)
)

// ContentEnhancer rewrites title, description and bullet points. The
// deterministic rules fill gaps and trim to limits but never silently
// drop user-supplied content; over-limit text is truncated with an
// ellipsis marker, not deleted.
type ContentEnhancer struct {
	registry *guidelines.Registry
	gen      ports.TextGenerator
	opts     StepOptions
}

func NewContentEnhancer(registry *guidelines.Registry, gen ports.TextGenerator, opts StepOptions) *ContentEnhancer {
	return &ContentEnhancer{registry: registry, gen: gen, opts: opts}
}

func (e *ContentEnhancer) Enhance(ctx context.Context, product *domain.Product, marketplace string) (domain.EnhancedContent, stepOutcome) {
	guideline := e.registry.Get(marketplace)

	return runAIStep(
		ctx, e.gen, e.opts, "enhance",
		enhancePromptSystem,
		buildEnhancePrompt(product, guideline),
		func(raw string) (domain.EnhancedContent, error) {
			return e.parseAIContent(raw, product, guideline)
		},
		func() domain.EnhancedContent {
			return e.EnhanceFallback(product, marketplace)
		},
	)
}

const enhancePromptSystem = `You are a marketplace listing copywriter. ` +
	`Respond with a single JSON object only, shaped as ` +
	`{"title":"...","description":"...","bullet_points":["..."],` +
	`"reasoning":{"title":"...","description":"...","bullet_points":"..."}}. ` +
	`Keep every piece of factual information from the source listing.`

func buildEnhancePrompt(product *domain.Product, guideline domain.MarketplaceGuideline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Marketplace: %s\n", guideline.Name)
	fmt.Fprintf(&b, "Title limit: %d-%d characters. Description limit: %d-%d characters. At most %d bullet points of %d characters.\n",
		guideline.Title.MinLength, guideline.Title.MaxLength,
		guideline.Description.MinLength, guideline.Description.MaxLength,
		guideline.BulletPoints.MaxCount, guideline.BulletPoints.MaxLength)
	for _, point := range guideline.KeyPoints {
		fmt.Fprintf(&b, "Guideline: %s\n", point)
	}
	b.WriteString("\nRewrite this listing to marketplace-ready quality without inventing facts:\n")
	fmt.Fprintf(&b, "Title: %s\n", product.Title)
	fmt.Fprintf(&b, "Description: %s\n", product.Description)
	for i, bullet := range product.BulletPoints {
		fmt.Fprintf(&b, "Bullet %d: %s\n", i+1, bullet)
	}
	fmt.Fprintf(&b, "Brand: %s\nCategory: %s\nMaterial: %s\n", product.Brand, product.Category, product.Material)
	for name, value := range product.Attributes {
		fmt.Fprintf(&b, "Attribute %s: %s\n", name, value)
	}
	return b.String()
}

type aiContentResponse struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	BulletPoints []string `json:"bullet_points"`
	Reasoning    struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		BulletPoints string `json:"bullet_points"`
	} `json:"reasoning"`
}

// parseAIContent coerces the model's JSON into EnhancedContent. Responses
// that would lose content (empty fields, fewer bullets than the seller
// wrote) are rejected so the step falls back instead.
func (e *ContentEnhancer) parseAIContent(raw string, product *domain.Product, guideline domain.MarketplaceGuideline) (domain.EnhancedContent, error) {
	var resp aiContentResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return domain.EnhancedContent{}, domain.WrapError(domain.ErrMalformedResponse, "parse enhancement response", err)
	}

	title := strings.TrimSpace(resp.Title)
	description := strings.TrimSpace(resp.Description)
	bullets := trimNonEmpty(resp.BulletPoints)

	if title == "" || description == "" {
		return domain.EnhancedContent{}, domain.WrapError(domain.ErrMalformedResponse, "parse enhancement response",
			errors.New("empty title or description"))
	}
	if len(bullets) < len(trimNonEmpty(product.BulletPoints)) {
		return domain.EnhancedContent{}, domain.WrapError(domain.ErrMalformedResponse, "parse enhancement response",
			errors.New("response dropped bullet points"))
	}

	titleLimit := min(titleRebuildLimit, guideline.Title.MaxLength)
	title = truncateWithEllipsis(title, titleLimit)

	out := domain.EnhancedContent{
		Title:        title,
		Description:  description,
		BulletPoints: bullets,
	}
	out.Changes = []domain.FieldChange{
		{Field: "title", Before: product.Title, After: title, Reasoning: orDefault(resp.Reasoning.Title, "rewritten for marketplace guidelines")},
		{Field: "description", Before: product.Description, After: description, Reasoning: orDefault(resp.Reasoning.Description, "rewritten for marketplace guidelines")},
		{Field: "bullet_points", Before: strings.Join(product.BulletPoints, "\n"), After: strings.Join(bullets, "\n"), Reasoning: orDefault(resp.Reasoning.BulletPoints, "rewritten for marketplace guidelines")},
	}
	return out, nil
}

// EnhanceFallback is the deterministic enhancement path.
func (e *ContentEnhancer) EnhanceFallback(product *domain.Product, marketplace string) domain.EnhancedContent {
	guideline := e.registry.Get(marketplace)

	title, titleReason := e.enhanceTitle(product, guideline)
	description, descReason := e.enhanceDescription(product, guideline)
	bullets, bulletReason := e.enhanceBullets(product, guideline)

	return domain.EnhancedContent{
		Title:        title,
		Description:  description,
		BulletPoints: bullets,
		Changes: []domain.FieldChange{
			{Field: "title", Before: product.Title, After: title, Reasoning: titleReason},
			{Field: "description", Before: product.Description, After: description, Reasoning: descReason},
			{Field: "bullet_points", Before: strings.Join(product.BulletPoints, "\n"), After: strings.Join(bullets, "\n"), Reasoning: bulletReason},
		},
	}
}

func (e *ContentEnhancer) enhanceTitle(product *domain.Product, guideline domain.MarketplaceGuideline) (string, string) {
	title := strings.TrimSpace(product.Title)
	limit := min(titleRebuildLimit, guideline.Title.MaxLength)

	switch {
	case title == "":
		return truncateWithEllipsis(e.synthesizeTitle(product), limit),
			"title was missing; synthesized from brand, type and attributes"
	case len([]rune(title)) < minTitleLength:
		return truncateWithEllipsis(e.synthesizeTitle(product), limit),
			"title was too short; synthesized from brand, type and attributes"
	case len([]rune(title)) > limit:
		return truncateWithEllipsis(title, limit),
			fmt.Sprintf("title exceeded the %d character limit; truncated with an ellipsis", limit)
	}

	components := []string{product.Brand, product.Attribute("color"), detectProductType(product), product.Attribute("model")}
	lower := strings.ToLower(title)
	anyPresent := false
	anyAvailable := false
	for _, comp := range components {
		comp = strings.TrimSpace(comp)
		if comp == "" {
			continue
		}
		anyAvailable = true
		if strings.Contains(lower, strings.ToLower(comp)) {
			anyPresent = true
			break
		}
	}
	if anyAvailable && !anyPresent {
		return truncateWithEllipsis(e.synthesizeTitle(product), limit),
			"title omitted every identifying attribute; rebuilt from brand, type and attributes"
	}
	return title, "no changes needed; title meets marketplace guidelines"
}

func (e *ContentEnhancer) synthesizeTitle(product *domain.Product) string {
	parts := make([]string, 0, 5)
	for _, part := range []string{
		product.Brand,
		detectProductType(product),
		product.Attribute("color"),
		product.Attribute("size"),
		product.Material,
	} {
		if p := strings.TrimSpace(part); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		if cat := strings.TrimSpace(product.Category); cat != "" {
			return "Quality " + cat + " Product"
		}
		return "Quality Product"
	}
	return strings.Join(parts, " ")
}

func (e *ContentEnhancer) enhanceDescription(product *domain.Product, guideline domain.MarketplaceGuideline) (string, string) {
	desc := strings.TrimSpace(product.Description)
	if desc == "" || len([]rune(desc)) < minDescLength {
		reason := "description was missing; synthesized from product attributes"
		if desc != "" {
			reason = "description was too short; synthesized from product attributes"
		}
		return e.synthesizeDescription(product, guideline), reason
	}

	hasFeatures := featureSignal.MatchString(desc)
	hasUseCase := useCaseSignal.MatchString(desc)
	if !hasFeatures && !hasUseCase {
		// Keep the seller's copy and add what's missing after it.
		augmented := desc + "\n\n" + featureParagraph(product) + "\n\n" + useCaseParagraph(product)
		return augmented, "description lacked feature and use-case signals; appended supporting paragraphs"
	}
	return desc, "no changes needed; description meets marketplace guidelines"
}

func (e *ContentEnhancer) synthesizeDescription(product *domain.Product, guideline domain.MarketplaceGuideline) string {
	productType := detectProductType(product)
	subject := strings.TrimSpace(strings.Join(nonEmpty(product.Brand, productType), " "))
	if subject == "" {
		subject = "product"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Discover the %s, a dependable choice for everyday use.", subject)
	if m := strings.TrimSpace(product.Material); m != "" {
		fmt.Fprintf(&b, " Crafted from %s for durability you can count on.", strings.ToLower(m))
	}
	b.WriteString("\n\n")
	b.WriteString(featureParagraph(product))
	b.WriteString("\n\n")
	b.WriteString(useCaseParagraph(product))
	b.WriteString("\n\n")
	b.WriteString(marketplaceClosing(guideline.Name))
	return b.String()
}

func featureParagraph(product *domain.Product) string {
	productType := detectProductType(product)
	if productType == "" {
		productType = "product"
	}
	return fmt.Sprintf("Key features of this %s include thoughtful design, reliable build quality and easy care. "+
		"Every detail is made to deliver consistent performance.", strings.ToLower(productType))
}

func useCaseParagraph(product *domain.Product) string {
	if cat := strings.TrimSpace(product.Category); cat != "" {
		return fmt.Sprintf("Ideal for anyone shopping in %s, it fits seamlessly into daily routines at home, at work or on the go.", strings.ToLower(cat))
	}
	return "Ideal for everyday use, it fits seamlessly into daily routines at home, at work or on the go."
}

// marketplaceClosing is a pure function of the marketplace name.
func marketplaceClosing(marketplace string) string {
	switch strings.ToLower(marketplace) {
	case "amazon":
		return "Add it to your cart today and enjoy fast, reliable delivery."
	case "ebay":
		return "Review the photos and condition notes, then buy with confidence."
	case "etsy":
		return "Each piece is prepared with care; message the shop for personalization options."
	case "walmart":
		return "Everyday value you can pick up in store or have delivered to your door."
	case "shopify":
		return "Order now and we'll have it on its way to you right away."
	default:
		return "Order today and see the difference for yourself."
	}
}

func (e *ContentEnhancer) enhanceBullets(product *domain.Product, guideline domain.MarketplaceGuideline) ([]string, string) {
	existing := trimNonEmpty(product.BulletPoints)

	switch {
	case len(existing) == 0:
		return bulletTemplates(classifyCategory(product)),
			"bullet points were missing; synthesized from the category template"
	case len(existing) <= 2:
		topped := topUpBullets(existing, guideline.Name)
		return topped, fmt.Sprintf("only %d bullet points provided; topped up to %d with marketplace candidates", len(existing), len(topped))
	default:
		return existing, "no changes needed; bullet points meet marketplace guidelines"
	}
}

func topUpBullets(existing []string, marketplace string) []string {
	out := append([]string(nil), existing...)
	candidates := append(marketplaceBullets(marketplace), bulletTemplates(categoryGeneric)...)

	for _, candidate := range candidates {
		if len(out) >= targetBulletCount {
			break
		}
		if bulletLabelOverlaps(out, candidate) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// bulletLabelOverlaps compares the pre-colon labels case-insensitively so
// a candidate never near-duplicates a bullet the seller already wrote.
func bulletLabelOverlaps(existing []string, candidate string) bool {
	candidateLabel := bulletLabel(candidate)
	if candidateLabel == "" {
		return false
	}
	for _, bullet := range existing {
		label := bulletLabel(bullet)
		if label == "" {
			continue
		}
		if strings.Contains(label, candidateLabel) || strings.Contains(candidateLabel, label) {
			return true
		}
	}
	return false
}

func bulletLabel(bullet string) string {
	label := bullet
	if idx := strings.IndexByte(bullet, ':'); idx >= 0 {
		label = bullet[:idx]
	}
	return strings.ToLower(strings.TrimSpace(label))
}

// ContentScore rates how completely the (enhanced) content fills the
// marketplace guideline. Deterministic; feeds the overall aggregate.
func (e *ContentEnhancer) ContentScore(product *domain.Product, marketplace string) int {
	guideline := e.registry.Get(marketplace)
	score := 0

	titleLen := len([]rune(strings.TrimSpace(product.Title)))
	switch {
	case titleLen >= guideline.Title.MinLength && titleLen <= guideline.Title.MaxLength:
		score += 30
	case titleLen > 0:
		score += 15
	}

	descLen := len([]rune(strings.TrimSpace(product.Description)))
	switch {
	case descLen >= guideline.Description.MinLength && descLen <= guideline.Description.MaxLength:
		score += 30
	case descLen > 0:
		score += 15
	}

	bullets := len(trimNonEmpty(product.BulletPoints))
	if bullets > targetBulletCount {
		bullets = targetBulletCount
	}
	score += bullets * 20 / targetBulletCount

	if len(product.Images) >= guideline.Images.MinCount {
		score += 10
	}
	if strings.TrimSpace(product.Brand) != "" {
		score += 10
	}
	return clampScore(score)
}

// truncateWithEllipsis cuts five runes short of the limit and appends the
// literal "..." marker, so truncation is always visible to the seller.
func truncateWithEllipsis(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	cut := limit - 5
	if cut < 1 {
		cut = 1
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "..."
}

func trimNonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
