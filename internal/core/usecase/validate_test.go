package usecase

import (
	"strings"
	"testing"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/guidelines"
)

func cleanAmazonProduct() *domain.Product {
	return &domain.Product{
		ID:          "p-1",
		Title:       "Acme Oak Bookshelf with Five Shelves",
		Description: "Solid oak bookshelf with five adjustable shelves. Assembles in under twenty minutes and holds up to forty kilograms per shelf.",
		BulletPoints: []string{
			"Solid oak construction",
			"Five adjustable shelves",
			"Holds 40kg per shelf",
			"Tool-free assembly",
			"Scratch-resistant finish",
		},
		Images: []domain.ProductImage{
			{URL: "https://cdn.example.com/p-1-front.jpg", Position: 1, IsMain: true},
			{URL: "https://cdn.example.com/p-1-side.jpg", Position: 2},
		},
		Brand:     "Acme",
		Category:  "Furniture",
		Price:     "149.99",
		Material:  "Oak",
		Condition: "New",
	}
}

func newValidator(t *testing.T) *FieldValidator {
	t.Helper()
	return NewFieldValidator(guidelines.NewRegistry(), DefaultValidationConfig())
}

func TestValidateCleanProduct(t *testing.T) {
	report := newValidator(t).Validate(cleanAmazonProduct(), "amazon")

	if !report.IsValid {
		t.Fatalf("clean product reported invalid: %+v", report.Issues)
	}
	if report.Score != 100 {
		t.Fatalf("score = %d, want 100", report.Score)
	}
	if len(report.MissingFields) != 0 {
		t.Fatalf("unexpected missing fields: %v", report.MissingFields)
	}
}

func TestValidateReportsMissingRequiredFields(t *testing.T) {
	product := &domain.Product{
		ID:    "p-2",
		Title: "Acme Widget Pro 3000",
		Brand: "Acme",
		Price: "19.99",
	}

	report := newValidator(t).Validate(product, "amazon")

	if report.IsValid {
		t.Fatal("product with missing required fields reported valid")
	}
	for _, want := range []string{"description", "bullet_points", "images"} {
		if !containsString(report.MissingFields, want) {
			t.Errorf("missing fields %v lack %q", report.MissingFields, want)
		}
	}
	for _, field := range report.MissingFields {
		if !hasIssueForField(report.Issues, field, domain.SeverityCritical) {
			t.Errorf("no critical issue emitted for missing field %q", field)
		}
	}
	// 3 missing fields at 10 each, 3 unmet recommended fields at 5 each.
	if report.Score != 55 {
		t.Fatalf("score = %d, want 55", report.Score)
	}
}

func TestValidateScoreIsMonotone(t *testing.T) {
	v := newValidator(t)

	base := v.Validate(cleanAmazonProduct(), "amazon")

	degraded := cleanAmazonProduct()
	degraded.Title = strings.ToUpper(degraded.Title)
	withCaps := v.Validate(degraded, "amazon")
	if withCaps.Score >= base.Score {
		t.Fatalf("all-caps title did not lower score: %d -> %d", base.Score, withCaps.Score)
	}

	degraded.BulletPoints = append(degraded.BulletPoints[:4], degraded.BulletPoints[0])
	withDup := v.Validate(degraded, "amazon")
	if withDup.Score >= withCaps.Score {
		t.Fatalf("duplicate bullet did not lower score further: %d -> %d", withCaps.Score, withDup.Score)
	}
}

func TestValidateTitleOverMarketplaceLimit(t *testing.T) {
	product := cleanAmazonProduct()
	product.Title = strings.Repeat("Very Long Title ", 6) // 96 chars, over ebay's 80
	product.Condition = "New"

	report := newValidator(t).Validate(product, "ebay")

	if !hasIssueForField(report.Issues, "title", domain.SeverityCritical) {
		t.Fatal("over-limit title not flagged critical on ebay")
	}
}

func TestValidatePrice(t *testing.T) {
	cases := []struct {
		price    string
		severity domain.Severity
		flagged  bool
	}{
		{"19.99", "", false},
		{"$1,299.99", "", false},
		{"abc", domain.SeverityCritical, true},
		{"-5", domain.SeverityCritical, true},
		{"0", domain.SeverityCritical, true},
		{"250000", domain.SeverityWarning, true},
	}

	v := newValidator(t)
	for _, tc := range cases {
		product := cleanAmazonProduct()
		product.Price = tc.price
		report := v.Validate(product, "amazon")
		flagged := hasIssueForField(report.Issues, "price", tc.severity)
		if tc.flagged && !flagged {
			t.Errorf("price %q: expected %s issue, got none", tc.price, tc.severity)
		}
		if !tc.flagged && hasAnyIssueForField(report.Issues, "price") {
			t.Errorf("price %q: unexpected issue", tc.price)
		}
	}
}

func TestValidateFlagsPlaceholderImages(t *testing.T) {
	product := cleanAmazonProduct()
	product.Images = []domain.ProductImage{
		{URL: "https://cdn.example.com/placeholder.jpg", Position: 1},
		{URL: "https://cdn.example.com/p-1.svg", Position: 2},
	}

	report := newValidator(t).Validate(product, "amazon")

	if !hasIssueForField(report.Issues, "images", domain.SeverityCritical) {
		t.Error("placeholder image URL not flagged critical")
	}
	if !hasIssueForField(report.Issues, "images", domain.SeverityWarning) {
		t.Error("unsupported image format not flagged")
	}
}

func TestValidateFlagsPlaceholderAttributes(t *testing.T) {
	product := cleanAmazonProduct()
	product.Attributes = map[string]string{"color": "TBD"}

	report := newValidator(t).Validate(product, "amazon")

	if !hasIssueForField(report.Issues, "color", domain.SeverityWarning) {
		t.Fatal("placeholder attribute value not flagged")
	}
}

func TestValidateWalmartRequiresTwoImages(t *testing.T) {
	product := cleanAmazonProduct()
	product.Images = product.Images[:1]
	product.Description += " " + strings.Repeat("Detail. ", 10)

	report := newValidator(t).Validate(product, "walmart")

	if !hasIssueForField(report.Issues, "images", domain.SeverityCritical) {
		t.Fatal("single image not flagged against walmart's two-image minimum")
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func hasIssueForField(issues []domain.Issue, field string, severity domain.Severity) bool {
	for _, issue := range issues {
		if issue.Field == field && (severity == "" || issue.Severity == severity) {
			return true
		}
	}
	return false
}

func hasAnyIssueForField(issues []domain.Issue, field string) bool {
	return hasIssueForField(issues, field, "")
}
