package guidelines

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetIsTotal(t *testing.T) {
	r := NewRegistry()

	g := r.Get("no-such-marketplace")
	if g.Name != DefaultMarketplace {
		t.Fatalf("unknown marketplace resolved to %q, want %q", g.Name, DefaultMarketplace)
	}
	if r.Known("no-such-marketplace") {
		t.Fatal("Known reported true for an unregistered marketplace")
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"eBay", "EBAY", " ebay "} {
		g := r.Get(name)
		if g.Name != "ebay" {
			t.Fatalf("Get(%q) resolved to %q, want ebay", name, g.Name)
		}
	}
	if r.Get("eBay").Title.MaxLength != 80 {
		t.Fatalf("ebay title limit = %d, want 80", r.Get("eBay").Title.MaxLength)
	}
}

func TestBuiltinGuidelinesAreComplete(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"amazon", "ebay", "etsy", "shopify", "walmart"} {
		if !r.Known(name) {
			t.Fatalf("builtin marketplace %q not registered", name)
		}
		g := r.Get(name)
		if g.Title.MaxLength <= 0 || g.Description.MaxLength <= 0 {
			t.Errorf("%s: missing length limits", name)
		}
		if len(g.Attributes.Required) == 0 {
			t.Errorf("%s: no required fields", name)
		}
		if len(g.Images.AllowedFormats) == 0 {
			t.Errorf("%s: no allowed image formats", name)
		}
	}
}

func TestLoadFileOverridesAndAdds(t *testing.T) {
	doc := `marketplaces:
  - name: Amazon
    title:
      min_length: 5
      max_length: 120
    description:
      min_length: 20
      max_length: 1000
    bullet_points:
      max_count: 3
      max_length: 100
    images:
      min_count: 1
      max_count: 4
      allowed_formats: [jpg]
    attributes:
      required: [title, price]
  - name: mercado
    title:
      min_length: 10
      max_length: 60
    description:
      min_length: 50
      max_length: 2000
    bullet_points:
      max_count: 6
      max_length: 150
    images:
      min_count: 1
      max_count: 6
      allowed_formats: [jpg, png]
    attributes:
      required: [title, description, price]
`
	path := filepath.Join(t.TempDir(), "guidelines.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if got := r.Get("amazon").Title.MaxLength; got != 120 {
		t.Fatalf("amazon override not applied, title max = %d", got)
	}
	if !r.Known("mercado") {
		t.Fatal("new marketplace from overlay not registered")
	}
	if got := r.Get("MERCADO").Title.MaxLength; got != 60 {
		t.Fatalf("mercado title max = %d, want 60", got)
	}
}

func TestLoadFileRejectsUnnamedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guidelines.yaml")
	if err := os.WriteFile(path, []byte("marketplaces:\n  - title:\n      max_length: 10\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := NewRegistry().LoadFile(path); err == nil {
		t.Fatal("expected error for marketplace entry without a name")
	}
}
