package sites

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Marlvin12/perfit/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSite is returned when a site table entry cannot be used
var ErrInvalidSite = errors.New("invalid site config")

// entry pairs a site config with its compiled URL pattern
type entry struct {
	config  types.SiteConfig
	pattern *regexp.Regexp
}

// Registry is an ordered, immutable table of site configs
type Registry struct {
	entries []entry
}

// NewRegistry compiles the given table. Table order is kept as the lookup order.
func NewRegistry(configs []types.SiteConfig) (*Registry, error) {
	entries := make([]entry, 0, len(configs))
	for i, cfg := range configs {
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("site %d (%s): %w", i, cfg.Domain, err)
		}
		pattern, err := regexp.Compile(cfg.URLPattern)
		if err != nil {
			return nil, fmt.Errorf("site %d (%s): %w: bad url pattern: %v", i, cfg.Domain, ErrInvalidSite, err)
		}
		cfg.Domain = strings.ToLower(cfg.Domain)
		entries = append(entries, entry{config: cfg, pattern: pattern})
	}
	return &Registry{entries: entries}, nil
}

// Default returns a registry over the built-in table
func Default() *Registry {
	r, err := NewRegistry(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in site table is invalid: %v", err))
	}
	return r
}

// Lookup returns the first site whose domain is a substring of hostname.
// Hostnames are compared in lower case.
func (r *Registry) Lookup(hostname string) (*types.SiteConfig, bool) {
	hostname = strings.ToLower(hostname)
	for i := range r.entries {
		if strings.Contains(hostname, r.entries[i].config.Domain) {
			cfg := r.entries[i].config
			return &cfg, true
		}
	}
	return nil, false
}

// MatchesPath reports whether path looks like a product page of the given site.
// Unknown sites never match.
func (r *Registry) MatchesPath(site *types.SiteConfig, path string) bool {
	if site == nil {
		return false
	}
	for i := range r.entries {
		if r.entries[i].config.Domain == site.Domain {
			return r.entries[i].pattern.MatchString(path)
		}
	}
	return false
}

// Sites returns the table in lookup order
func (r *Registry) Sites() []types.SiteConfig {
	out := make([]types.SiteConfig, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.config)
	}
	return out
}

// Len returns the number of configured sites
func (r *Registry) Len() int {
	return len(r.entries)
}

func validate(cfg types.SiteConfig) error {
	switch {
	case cfg.Domain == "":
		return fmt.Errorf("%w: domain is required", ErrInvalidSite)
	case cfg.URLPattern == "":
		return fmt.Errorf("%w: url pattern is required", ErrInvalidSite)
	case cfg.Selectors.ProductContainer == "":
		return fmt.Errorf("%w: product container selector is required", ErrInvalidSite)
	case cfg.Selectors.ProductName == "":
		return fmt.Errorf("%w: product name selector is required", ErrInvalidSite)
	case cfg.Selectors.ProductImages == "":
		return fmt.Errorf("%w: product images selector is required", ErrInvalidSite)
	}
	return nil
}

// fileTable is the on-disk layout of a site table
type fileTable struct {
	// Mode is "append" (default) to add entries after the built-ins or
	// "replace" to use only the file's entries
	Mode  string             `yaml:"mode"`
	Sites []types.SiteConfig `yaml:"sites"`
}

// LoadFile builds a registry from the built-in table and a YAML site file
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site file: %w", err)
	}
	return Load(data)
}

// Load builds a registry from the built-in table and YAML site data
func Load(data []byte) (*Registry, error) {
	var table fileTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse site file: %w", err)
	}

	switch table.Mode {
	case "", "append":
		return NewRegistry(append(Builtin(), table.Sites...))
	case "replace":
		return NewRegistry(table.Sites)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidSite, table.Mode)
	}
}
