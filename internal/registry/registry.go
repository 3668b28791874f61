// Package registry holds the product catalog: which documentation sites
// exist for each product, where they live, and which generation of the doc
// site serves a given version.
package registry

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/semver"
)

//go:embed products.yaml
var embeddedProducts []byte

// ModernDocsMinVersion is the first version served by the consolidated
// single-page documentation site.
var ModernDocsMinVersion = semver.New(9, 0, 0)

// KnownLegacyMinors are the minor-version doc trees known to exist on the
// legacy site. Discovery probes forward from the last entry for newer
// minors published after this list was written.
var KnownLegacyMinors = []string{"8.17", "8.18", "8.19"}

// LatestKnownLegacyMinor returns the newest statically known legacy minor.
func LatestKnownLegacyMinor() string {
	return KnownLegacyMinors[len(KnownLegacyMinors)-1]
}

// ProductConfig describes one product's documentation sites.
type ProductConfig struct {
	Name          string `yaml:"name"`
	DisplayName   string `yaml:"display_name"`
	LegacyBaseURL string `yaml:"legacy_base_url,omitempty"`
	LegacyPath    string `yaml:"legacy_path,omitempty"`
	ModernBaseURL string `yaml:"modern_base_url"`
	GitHubRepo    string `yaml:"github_repo"`
	HasLegacyDocs bool   `yaml:"has_legacy_docs,omitempty"`
}

// UsesModernDocs reports which doc-site generation serves the given
// version: modern-only products always route modern, regardless of the
// version threshold.
func (p ProductConfig) UsesModernDocs(v semver.Version) bool {
	if !p.HasLegacyDocs {
		return true
	}
	return v.Compare(ModernDocsMinVersion) >= 0
}

// Registry is an ordered product catalog.
type Registry struct {
	products []ProductConfig
	byName   map[string]ProductConfig
}

type registryFile struct {
	Products []ProductConfig `yaml:"products"`
}

// Load parses a registry document.
func Load(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse product registry: %w", err)
	}
	return New(file.Products)
}

// New builds a registry from an in-memory product list.
func New(products []ProductConfig) (*Registry, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("product registry is empty")
	}

	r := &Registry{
		products: products,
		byName:   make(map[string]ProductConfig, len(products)),
	}
	for _, p := range products {
		if p.Name == "" {
			return nil, fmt.Errorf("product registry entry missing name")
		}
		if p.ModernBaseURL == "" {
			return nil, fmt.Errorf("product %s missing modern_base_url", p.Name)
		}
		if p.HasLegacyDocs && p.LegacyBaseURL == "" {
			return nil, fmt.Errorf("product %s marked legacy but missing legacy_base_url", p.Name)
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate product %s in registry", p.Name)
		}
		r.byName[p.Name] = p
	}
	return r, nil
}

// LoadFile reads a registry override from disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product registry: %w", err)
	}
	return Load(data)
}

// Default returns the built-in registry. Panics only if the embedded data
// is malformed, which is a build defect.
func Default() *Registry {
	r, err := Load(embeddedProducts)
	if err != nil {
		panic(err)
	}
	return r
}

// Get looks up a product by key.
func (r *Registry) Get(name string) (ProductConfig, error) {
	p, ok := r.byName[name]
	if !ok {
		return ProductConfig{}, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, name)
	}
	return p, nil
}

// Has reports whether the product exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// All returns every product in catalog order.
func (r *Registry) All() []ProductConfig {
	out := make([]ProductConfig, len(r.products))
	copy(out, r.products)
	return out
}

// Names returns every product key in catalog order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.products))
	for i, p := range r.products {
		names[i] = p.Name
	}
	return names
}
