package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/core/ports"
	"github.com/sellerdesk/listing-pipeline/internal/guidelines"
)

// ComplianceConfig carries the deduction weights and approval threshold.
type ComplianceConfig struct {
	CriticalPenalty    int
	WarningPenalty     int
	SuggestionPenalty  int
	CompliantThreshold int
}

func DefaultComplianceConfig() ComplianceConfig {
	return ComplianceConfig{
		CriticalPenalty:    10,
		WarningPenalty:     5,
		SuggestionPenalty:  2,
		CompliantThreshold: 70,
	}
}

// Marketplace-independent unverifiable medical/therapeutic claim terms.
// Any match is critical regardless of target marketplace.
var medicalClaimTerms = []string{
	"cures", "cure for", "heals", "treats", "treatment for",
	"clinically proven", "doctor recommended", "fda approved",
	"anti-viral", "antiviral", "kills bacteria", "miracle",
	"therapeutic grade", "prevents disease",
}

var (
	urlPattern   = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"]+|\bwww\.[^\s<>"]+`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// ComplianceChecker checks a product against prohibited-content rules.
// The AI-backed path and the rule-based fallback share one output
// contract, and the fallback is idempotent: the same unmodified product
// always yields the same issue set and score.
type ComplianceChecker struct {
	registry *guidelines.Registry
	gen      ports.TextGenerator
	opts     StepOptions
	cfg      ComplianceConfig
}

func NewComplianceChecker(registry *guidelines.Registry, gen ports.TextGenerator, opts StepOptions, cfg ComplianceConfig) *ComplianceChecker {
	if cfg.CompliantThreshold <= 0 {
		cfg = DefaultComplianceConfig()
	}
	return &ComplianceChecker{registry: registry, gen: gen, opts: opts, cfg: cfg}
}

func (c *ComplianceChecker) Check(ctx context.Context, product *domain.Product, marketplace string) (domain.ComplianceReport, stepOutcome) {
	guideline := c.registry.Get(marketplace)

	return runAIStep(
		ctx, c.gen, c.opts, "compliance",
		compliancePromptSystem,
		buildCompliancePrompt(product, guideline),
		func(raw string) (domain.ComplianceReport, error) {
			return c.parseAIReport(raw)
		},
		func() domain.ComplianceReport {
			return c.CheckFallback(product, marketplace)
		},
	)
}

const compliancePromptSystem = `You are a marketplace listing compliance reviewer. ` +
	`Respond with a single JSON object only, no prose, shaped as ` +
	`{"issues":[{"field":"...","severity":"critical|warning|suggestion","message":"...","recommendation":"...","policy_reference":"..."}],"score":0-100}.`

func buildCompliancePrompt(product *domain.Product, guideline domain.MarketplaceGuideline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Marketplace: %s\n", guideline.Name)
	if len(guideline.ProhibitedTerms) > 0 {
		fmt.Fprintf(&b, "Prohibited terms: %s\n", strings.Join(guideline.ProhibitedTerms, "; "))
	}
	for _, point := range guideline.KeyPoints {
		fmt.Fprintf(&b, "Policy note: %s\n", point)
	}
	b.WriteString("\nReview this product listing for policy violations, unverifiable claims and off-platform contact attempts.\n")
	fmt.Fprintf(&b, "Title: %s\n", product.Title)
	fmt.Fprintf(&b, "Description: %s\n", product.Description)
	for i, bullet := range product.BulletPoints {
		fmt.Fprintf(&b, "Bullet %d: %s\n", i+1, bullet)
	}
	return b.String()
}

type aiComplianceResponse struct {
	Issues []struct {
		Field          string `json:"field"`
		Severity       string `json:"severity"`
		Message        string `json:"message"`
		Recommendation string `json:"recommendation"`
		PolicyRef      string `json:"policy_reference"`
	} `json:"issues"`
	Score *int `json:"score"`
}

func (c *ComplianceChecker) parseAIReport(raw string) (domain.ComplianceReport, error) {
	var resp aiComplianceResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return domain.ComplianceReport{}, domain.WrapError(domain.ErrMalformedResponse, "parse compliance response", err)
	}

	issues := make([]domain.Issue, 0, len(resp.Issues))
	for _, item := range resp.Issues {
		if strings.TrimSpace(item.Message) == "" {
			continue
		}
		issues = append(issues, domain.Issue{
			Field:          strings.TrimSpace(item.Field),
			Severity:       domain.ParseSeverity(strings.ToLower(strings.TrimSpace(item.Severity))),
			Message:        strings.TrimSpace(item.Message),
			Recommendation: strings.TrimSpace(item.Recommendation),
			PolicyRef:      strings.TrimSpace(item.PolicyRef),
		})
	}

	score := c.scoreFromIssues(issues)
	if resp.Score != nil {
		score = clampScore(*resp.Score)
	}
	return domain.ComplianceReport{
		IsCompliant: score >= c.cfg.CompliantThreshold,
		Issues:      issues,
		Score:       score,
	}, nil
}

// CheckFallback is the deterministic rule-based path, used directly when
// text generation is unavailable and as the absorbing fallback otherwise.
func (c *ComplianceChecker) CheckFallback(product *domain.Product, marketplace string) domain.ComplianceReport {
	guideline := c.registry.Get(marketplace)
	issues := make([]domain.Issue, 0, 8)

	fields := []struct {
		name string
		text string
	}{
		{"title", product.Title},
		{"description", product.Description},
		{"bullet_points", strings.Join(product.BulletPoints, "\n")},
	}

	for _, term := range guideline.ProhibitedTerms {
		for _, f := range fields {
			if containsTerm(f.text, term) {
				issues = append(issues, domain.Issue{
					Field:          f.name,
					Severity:       domain.SeverityWarning,
					Message:        fmt.Sprintf("%s contains prohibited term %q", f.name, term),
					Recommendation: fmt.Sprintf("remove %q; %s disallows it in listings", term, guideline.Name),
					PolicyRef:      guideline.Name + "-prohibited-terms",
				})
				break
			}
		}
	}

	for _, term := range medicalClaimTerms {
		for _, f := range fields {
			if containsTerm(f.text, term) {
				issues = append(issues, domain.Issue{
					Field:          f.name,
					Severity:       domain.SeverityCritical,
					Message:        fmt.Sprintf("%s contains unverifiable health claim %q", f.name, term),
					Recommendation: "remove medical or therapeutic claims that cannot be substantiated",
					PolicyRef:      "unverifiable-health-claims",
				})
				break
			}
		}
	}

	if urlPattern.MatchString(product.Description) {
		issues = append(issues, domain.Issue{
			Field:          "description",
			Severity:       domain.SeverityCritical,
			Message:        "description contains an external URL",
			Recommendation: "remove links; marketplaces prohibit steering buyers off-platform",
			PolicyRef:      "external-contact",
		})
	}
	if emailPattern.MatchString(product.Description) {
		issues = append(issues, domain.Issue{
			Field:          "description",
			Severity:       domain.SeverityCritical,
			Message:        "description contains an email address",
			Recommendation: "remove contact details; buyers must use marketplace messaging",
			PolicyRef:      "external-contact",
		})
	}

	for _, field := range missingRequiredFields(product, guideline) {
		issues = append(issues, domain.Issue{
			Field:          field,
			Severity:       domain.SeverityCritical,
			Message:        fmt.Sprintf("required field %q is missing", field),
			Recommendation: fmt.Sprintf("provide %q to satisfy %s listing requirements", field, guideline.Name),
		})
	}

	score := c.scoreFromIssues(issues)
	return domain.ComplianceReport{
		IsCompliant: score >= c.cfg.CompliantThreshold,
		Issues:      issues,
		Score:       score,
	}
}

func (c *ComplianceChecker) scoreFromIssues(issues []domain.Issue) int {
	score := 100
	for _, issue := range issues {
		switch issue.Severity {
		case domain.SeverityCritical:
			score -= c.cfg.CriticalPenalty
		case domain.SeverityWarning:
			score -= c.cfg.WarningPenalty
		default:
			score -= c.cfg.SuggestionPenalty
		}
	}
	return clampScore(score)
}

// containsTerm matches case-insensitively on word boundaries. Terms that
// start or end with punctuation ("#1", "l@@k") fall back to substring
// matching because \b is meaningless next to non-word characters.
func containsTerm(text, term string) bool {
	if text == "" || term == "" {
		return false
	}
	if isWordBounded(term) {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if err == nil {
			return re.MatchString(text)
		}
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(term))
}

func isWordBounded(term string) bool {
	runes := []rune(term)
	first, last := runes[0], runes[len(runes)-1]
	isWord := func(r rune) bool {
		return r == '_' || ('0' <= r && r <= '9') ||
			('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
	}
	return isWord(first) && isWord(last)
}
