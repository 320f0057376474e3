package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/core/ports"
)

const (
	primaryCap   = 5
	secondaryCap = 10
	tertiaryCap  = 15
)

// KeywordGenerator produces tiered search keywords. The AI path parses
// strict JSON, then falls back to regex section extraction on malformed
// output, then to the deterministic frequency-based generator.
type KeywordGenerator struct {
	gen  ports.TextGenerator
	opts StepOptions
}

func NewKeywordGenerator(gen ports.TextGenerator, opts StepOptions) *KeywordGenerator {
	return &KeywordGenerator{gen: gen, opts: opts}
}

func (g *KeywordGenerator) Generate(ctx context.Context, product *domain.Product, marketplace string) (domain.KeywordSet, stepOutcome) {
	return runAIStep(
		ctx, g.gen, g.opts, "keywords",
		keywordPromptSystem,
		buildKeywordPrompt(product, marketplace),
		parseKeywordResponse,
		func() domain.KeywordSet {
			return g.GenerateFallback(product)
		},
	)
}

const keywordPromptSystem = `You are a marketplace SEO specialist. Respond with a single JSON object only, ` +
	`shaped as {"primary":["..."],"secondary":["..."],"tertiary":["..."]} with at most 5, 10 and 15 entries.`

func buildKeywordPrompt(product *domain.Product, marketplace string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Marketplace: %s\n", marketplace)
	b.WriteString("Generate tiered search keywords for this product, highest search value first.\n")
	fmt.Fprintf(&b, "Title: %s\nBrand: %s\nCategory: %s\n", product.Title, product.Brand, product.Category)
	fmt.Fprintf(&b, "Description: %s\n", product.Description)
	return b.String()
}

var keywordHeaderPattern = regexp.MustCompile(`(?i)(primary|secondary|tertiary)\s+keywords?\s*:`)

func parseKeywordResponse(raw string) (domain.KeywordSet, error) {
	var set domain.KeywordSet
	if err := json.Unmarshal([]byte(raw), &set); err == nil {
		return normalizeKeywordSet(set), nil
	}

	// Malformed JSON: salvage labelled sections before giving up. Each
	// section runs from its header to the next header or end of text.
	headers := keywordHeaderPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(headers) == 0 {
		return domain.KeywordSet{}, domain.WrapError(domain.ErrMalformedResponse, "parse keyword response",
			fmt.Errorf("no JSON object and no labelled keyword sections"))
	}
	for i, header := range headers {
		tier := strings.ToLower(raw[header[2]:header[3]])
		end := len(raw)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		terms := splitKeywordList(raw[header[1]:end])
		switch tier {
		case "primary":
			set.Primary = append(set.Primary, terms...)
		case "secondary":
			set.Secondary = append(set.Secondary, terms...)
		case "tertiary":
			set.Tertiary = append(set.Tertiary, terms...)
		}
	}
	return normalizeKeywordSet(set), nil
}

func splitKeywordList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		cleaned := strings.Trim(strings.TrimSpace(part), `"'-* `)
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// GenerateFallback derives keywords from the record itself: brand terms
// and leading title words up front, title phrases and attribute pairings
// in the middle, description word frequency at the tail.
func (g *KeywordGenerator) GenerateFallback(product *domain.Product) domain.KeywordSet {
	var set domain.KeywordSet

	if brand := strings.TrimSpace(product.Brand); brand != "" {
		set.Primary = append(set.Primary, brand)
		if cat := strings.TrimSpace(product.Category); cat != "" {
			set.Primary = append(set.Primary, brand+" "+cat)
		}
	}
	titleWords := strings.Fields(strings.TrimSpace(product.Title))
	if len(titleWords) >= 3 {
		set.Primary = append(set.Primary, strings.Join(titleWords[:3], " "))
	} else if len(titleWords) > 0 {
		set.Primary = append(set.Primary, strings.Join(titleWords, " "))
	}

	for i := 0; i+3 <= len(titleWords); i++ {
		set.Secondary = append(set.Secondary, strings.Join(titleWords[i:i+3], " "))
	}
	if cat := strings.TrimSpace(product.Category); cat != "" {
		for _, name := range sortedAttributeNames(product.Attributes) {
			if value := strings.TrimSpace(product.Attributes[name]); value != "" {
				set.Secondary = append(set.Secondary, cat+" "+value)
			}
		}
	}

	set.Tertiary = append(set.Tertiary, frequentWords(product.Description, 10)...)
	set.Tertiary = append(set.Tertiary, bigrams(product.Description, tertiaryCap)...)

	return normalizeKeywordSet(set)
}

// normalizeKeywordSet trims, lowercases nothing beyond dedupe keys,
// removes duplicates within and across tiers and caps tier sizes,
// preserving first-seen order.
func normalizeKeywordSet(set domain.KeywordSet) domain.KeywordSet {
	seen := make(map[string]bool)
	dedupe := func(items []string, limit int) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, trimmed)
			if len(out) == limit {
				break
			}
		}
		return out
	}
	return domain.KeywordSet{
		Primary:   dedupe(set.Primary, primaryCap),
		Secondary: dedupe(set.Secondary, secondaryCap),
		Tertiary:  dedupe(set.Tertiary, tertiaryCap),
	}
}

func frequentWords(text string, limit int) []string {
	counts := make(map[string]int)
	order := make([]string, 0, 32)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, `.,!?;:"'()[]`)
		if len(word) <= 3 {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}
	// Stable ordering: frequency descending, first appearance breaking ties.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func bigrams(text string, limit int) []string {
	words := make([]string, 0, 32)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, `.,!?;:"'()[]`)
		if word != "" {
			words = append(words, word)
		}
	}
	out := make([]string, 0, limit)
	for i := 0; i+2 <= len(words) && len(out) < limit; i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

func sortedAttributeNames(attributes map[string]string) []string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SEOScore rates keyword coverage: tier fill ratios plus whether any
// primary keyword actually appears in the title.
func (g *KeywordGenerator) SEOScore(set domain.KeywordSet, product *domain.Product) int {
	score := 35*min(len(set.Primary), primaryCap)/primaryCap +
		20*min(len(set.Secondary), secondaryCap)/secondaryCap +
		15*min(len(set.Tertiary), tertiaryCap)/tertiaryCap

	titleLower := strings.ToLower(product.Title)
	for _, kw := range set.Primary {
		if kw != "" && strings.Contains(titleLower, strings.ToLower(kw)) {
			score += 30
			break
		}
	}
	return clampScore(score)
}
