package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/guidelines"
)

func newEnhancer() *ContentEnhancer {
	return NewContentEnhancer(guidelines.NewRegistry(), nil, StepOptions{})
}

func TestEnhanceFallbackTruncatesOverlongTitle(t *testing.T) {
	product := cleanAmazonProduct()
	product.Title = strings.Repeat("Premium Oak Bookshelf ", 10) // 220 chars

	content := newEnhancer().EnhanceFallback(product, "amazon")

	limit := 150 // amazon allows 200, the rebuild cap is tighter
	if got := len([]rune(content.Title)); got > limit {
		t.Fatalf("title length = %d, want <= %d", got, limit)
	}
	if !strings.HasSuffix(content.Title, "...") {
		t.Fatalf("truncated title does not end in ellipsis: %q", content.Title)
	}
	if got := len([]rune(content.Title)); got > 148 {
		t.Fatalf("truncation cut at %d runes, want limit-5 plus marker", got)
	}
}

func TestEnhanceFallbackTruncatesToMarketplaceLimit(t *testing.T) {
	product := cleanAmazonProduct()
	product.Title = strings.Repeat("Solid Oak Shelf ", 8) // 128 chars, over ebay's 80

	content := newEnhancer().EnhanceFallback(product, "ebay")

	if got := len([]rune(content.Title)); got > 80 {
		t.Fatalf("title length = %d, want <= ebay limit 80", got)
	}
	if !strings.HasSuffix(content.Title, "...") {
		t.Fatalf("truncated title does not end in ellipsis: %q", content.Title)
	}
}

func TestEnhanceFallbackSynthesizesMissingTitle(t *testing.T) {
	product := cleanAmazonProduct()
	product.Title = ""

	content := newEnhancer().EnhanceFallback(product, "amazon")

	if content.Title == "" {
		t.Fatal("missing title not synthesized")
	}
	if !strings.Contains(content.Title, "Acme") {
		t.Errorf("synthesized title %q omits the brand", content.Title)
	}
}

func TestEnhanceFallbackRebuildsUnidentifiableTitle(t *testing.T) {
	product := cleanAmazonProduct()
	product.Title = "Great item you will really like"

	content := newEnhancer().EnhanceFallback(product, "amazon")

	if content.Title == product.Title {
		t.Fatal("title with no identifying attributes was kept unchanged")
	}
	if !strings.Contains(strings.ToLower(content.Title), "acme") {
		t.Errorf("rebuilt title %q omits the brand", content.Title)
	}
}

func TestEnhanceFallbackSynthesizesShortDescription(t *testing.T) {
	product := cleanAmazonProduct()
	product.Description = "An oak shelf."

	content := newEnhancer().EnhanceFallback(product, "etsy")

	if len([]rune(content.Description)) < minDescLength {
		t.Fatalf("synthesized description still too short: %q", content.Description)
	}
	// The closing line is marketplace-specific.
	if !strings.Contains(content.Description, "message the shop") {
		t.Errorf("etsy closing not present in %q", content.Description)
	}
}

func TestEnhanceFallbackAugmentsDescriptionWithoutSignals(t *testing.T) {
	product := cleanAmazonProduct()
	product.Description = "This is a brown wooden item that many people have bought over the years from our shop in Ohio."

	content := newEnhancer().EnhanceFallback(product, "amazon")

	if !strings.HasPrefix(content.Description, product.Description) {
		t.Fatal("augmentation replaced the seller's copy instead of preserving it")
	}
	if len(content.Description) <= len(product.Description) {
		t.Fatal("description lacking signals was not augmented")
	}
}

func TestEnhanceFallbackKeepsGoodDescription(t *testing.T) {
	product := cleanAmazonProduct() // mentions "holds", "adjustable" features via "use"? keep explicit
	product.Description = "Key features include five adjustable shelves and a solid oak frame. Ideal for living rooms and home offices."

	content := newEnhancer().EnhanceFallback(product, "amazon")

	if content.Description != product.Description {
		t.Fatalf("well-formed description was modified:\n%q", content.Description)
	}
	for _, change := range content.Changes {
		if change.Reasoning == "" {
			t.Errorf("change for %q has empty reasoning", change.Field)
		}
	}
}

func TestEnhanceFallbackNeverShrinksBullets(t *testing.T) {
	e := newEnhancer()

	for _, count := range []int{0, 1, 2, 3, 5} {
		product := cleanAmazonProduct()
		product.BulletPoints = product.BulletPoints[:count]

		content := e.EnhanceFallback(product, "amazon")

		if len(content.BulletPoints) < count {
			t.Fatalf("bullets shrank from %d to %d", count, len(content.BulletPoints))
		}
		if count > 0 && count <= 2 && len(content.BulletPoints) != targetBulletCount {
			t.Errorf("%d bullets topped up to %d, want %d", count, len(content.BulletPoints), targetBulletCount)
		}
		for i := 0; i < count; i++ {
			if content.BulletPoints[i] != product.BulletPoints[i] {
				t.Errorf("seller bullet %d was rewritten: %q", i, content.BulletPoints[i])
			}
		}
	}
}

func TestEnhanceFallbackBulletTemplatesFollowCategory(t *testing.T) {
	product := &domain.Product{
		ID:       "p-3",
		Title:    "Cotton Summer Dress",
		Category: "Clothing",
		Brand:    "Acme",
	}

	content := newEnhancer().EnhanceFallback(product, "amazon")

	joined := strings.Join(content.BulletPoints, "\n")
	if !strings.Contains(joined, "Quality Fabric") {
		t.Fatalf("clothing template not used, got:\n%s", joined)
	}
}

func TestEnhanceRejectsResponseDroppingBullets(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"title":"New Title","description":"New description text.","bullet_points":["only one"]}`,
	}}
	e := NewContentEnhancer(guidelines.NewRegistry(), gen, StepOptions{})
	product := cleanAmazonProduct() // five bullets

	content, outcome := e.Enhance(context.Background(), product, "amazon")

	if outcome.UsedAI {
		t.Fatal("response that drops bullets must be rejected in favor of the fallback")
	}
	if len(content.BulletPoints) < len(product.BulletPoints) {
		t.Fatalf("fallback shrank bullets: %d -> %d", len(product.BulletPoints), len(content.BulletPoints))
	}
}

func TestEnhanceAcceptsWellFormedResponse(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"title":"Acme Oak Bookshelf, Five Adjustable Shelves",` +
			`"description":"Solid oak bookshelf with five adjustable shelves and a scratch-resistant finish.",` +
			`"bullet_points":["a","b","c","d","e"],` +
			`"reasoning":{"title":"front-loaded brand"}}`,
	}}
	e := NewContentEnhancer(guidelines.NewRegistry(), gen, StepOptions{})

	content, outcome := e.Enhance(context.Background(), cleanAmazonProduct(), "amazon")

	if !outcome.UsedAI {
		t.Fatalf("well-formed response rejected: %s", outcome.Reason)
	}
	if content.Title != "Acme Oak Bookshelf, Five Adjustable Shelves" {
		t.Fatalf("title = %q", content.Title)
	}
	if len(content.Changes) != 3 {
		t.Fatalf("changes = %d, want one per field", len(content.Changes))
	}
	if content.Changes[0].Reasoning != "front-loaded brand" {
		t.Fatalf("title reasoning = %q", content.Changes[0].Reasoning)
	}
}

func TestContentScore(t *testing.T) {
	e := newEnhancer()

	if got := e.ContentScore(cleanAmazonProduct(), "amazon"); got != 100 {
		t.Fatalf("complete product content score = %d, want 100", got)
	}

	empty := &domain.Product{ID: "p-4"}
	if got := e.ContentScore(empty, "amazon"); got != 0 {
		t.Fatalf("empty product content score = %d, want 0", got)
	}

	partial := cleanAmazonProduct()
	partial.BulletPoints = partial.BulletPoints[:2]
	partial.Brand = ""
	// 30 title + 30 desc + 2*20/5 bullets + 10 images = 78
	if got := e.ContentScore(partial, "amazon"); got != 78 {
		t.Fatalf("partial product content score = %d, want 78", got)
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	if got := truncateWithEllipsis("short", 150); got != "short" {
		t.Fatalf("under-limit string modified: %q", got)
	}
	long := strings.Repeat("x", 200)
	got := truncateWithEllipsis(long, 150)
	if len([]rune(got)) != 148 {
		t.Fatalf("len = %d, want 148 (145 runes + ellipsis)", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("no ellipsis marker: %q", got)
	}
}
