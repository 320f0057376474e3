// Package guidelines holds the per-marketplace structural and policy
// configuration tables. The tables are data, not law: every value can be
// replaced from a YAML file without code changes.
package guidelines

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

// DefaultMarketplace is the single explicit fallback for unknown names.
const DefaultMarketplace = "amazon"

// Registry resolves marketplace names to guidelines. Lookup is
// case-insensitive and total: unknown names resolve to the Amazon
// guideline instead of erroring, which keeps every downstream pipeline
// stage a total function as well.
type Registry struct {
	byName map[string]domain.MarketplaceGuideline
}

// NewRegistry builds a registry from the builtin tables.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]domain.MarketplaceGuideline, len(builtin))}
	for _, g := range builtin {
		r.byName[strings.ToLower(g.Name)] = g
	}
	return r
}

// LoadFile overlays guidelines from a YAML document. Entries replace the
// builtin guideline of the same name wholesale; new names are added.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read guidelines file: %w", err)
	}
	var doc struct {
		Marketplaces []domain.MarketplaceGuideline `yaml:"marketplaces"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse guidelines yaml: %w", err)
	}
	for _, g := range doc.Marketplaces {
		name := strings.ToLower(strings.TrimSpace(g.Name))
		if name == "" {
			return fmt.Errorf("guidelines yaml: marketplace entry without a name")
		}
		g.Name = name
		r.byName[name] = g
	}
	return nil
}

// Get returns the guideline for a marketplace name. It never fails.
func (r *Registry) Get(marketplace string) domain.MarketplaceGuideline {
	name := strings.ToLower(strings.TrimSpace(marketplace))
	if g, ok := r.byName[name]; ok {
		return g
	}
	return r.byName[DefaultMarketplace]
}

// Known reports whether a marketplace name resolves without falling back.
func (r *Registry) Known(marketplace string) bool {
	_, ok := r.byName[strings.ToLower(strings.TrimSpace(marketplace))]
	return ok
}

// Names lists the registered marketplace names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
