// Package category maps transaction descriptions to category ids using
// ordered lookup tables. All keyword data comes from the tables; the
// classifier itself carries no literals beyond the last-resort label.
package category

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/kakeibu/pkg/models"
)

// Rule maps a description key to a category id.
type Rule struct {
	Key      string
	Category string
}

// Fallback is a keyword group checked when no rule matched.
type Fallback struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Info is display metadata for a category.
type Info struct {
	Name  string      `yaml:"name"`
	Color string      `yaml:"color"`
	Type  models.Type `yaml:"type"`
}

// Mapping holds every table the classifier consults.
type Mapping struct {
	Rules         []Rule
	Subcategories map[string]string
	Defaults      map[models.Type]string
	Fallbacks     map[models.Type][]Fallback
	Categories    map[string]Info
}

type mappingFile struct {
	Mappings        yaml.Node                  `yaml:"mappings"`
	Subcategories   map[string]string          `yaml:"subcategories"`
	DefaultCategory map[models.Type]string     `yaml:"defaultCategory"`
	Fallbacks       map[models.Type][]Fallback `yaml:"fallbacks"`
	Categories      map[string]Info            `yaml:"categories"`
}

// Load reads a categories YAML file.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a categories table, keeping the mapping order of the document.
func Parse(data []byte) (*Mapping, error) {
	var f mappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse categories yaml: %w", err)
	}

	m := &Mapping{
		Subcategories: f.Subcategories,
		Defaults:      f.DefaultCategory,
		Fallbacks:     f.Fallbacks,
		Categories:    f.Categories,
	}
	if f.Mappings.Kind != 0 {
		if f.Mappings.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: mappings must be a mapping", f.Mappings.Line)
		}
		for i := 0; i+1 < len(f.Mappings.Content); i += 2 {
			m.Rules = append(m.Rules, Rule{Key: f.Mappings.Content[i].Value, Category: f.Mappings.Content[i+1].Value})
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that every referenced category is known.
func (m *Mapping) Validate() error {
	known := func(id string) bool {
		if _, ok := m.Categories[id]; ok {
			return true
		}
		_, ok := m.Subcategories[id]
		return ok
	}

	var errs []error
	for _, r := range m.Rules {
		if r.Key == "" {
			errs = append(errs, errors.New("mapping with empty description"))
		}
		if !known(r.Category) {
			errs = append(errs, fmt.Errorf("mapping %q: unknown category %q", r.Key, r.Category))
		}
	}
	for alias, target := range m.Subcategories {
		if _, ok := m.Categories[target]; !ok {
			errs = append(errs, fmt.Errorf("subcategory %q: unknown category %q", alias, target))
		}
	}
	for t, id := range m.Defaults {
		if !t.Valid() {
			errs = append(errs, fmt.Errorf("default category for unknown type %q", t))
		}
		if !known(id) {
			errs = append(errs, fmt.Errorf("default %s category: unknown category %q", t, id))
		}
	}
	for t, groups := range m.Fallbacks {
		if !t.Valid() {
			errs = append(errs, fmt.Errorf("fallbacks for unknown type %q", t))
		}
		for _, g := range groups {
			if !known(g.Category) {
				errs = append(errs, fmt.Errorf("fallback: unknown category %q", g.Category))
			}
		}
	}
	for id, info := range m.Categories {
		if info.Type != "" && !info.Type.Valid() {
			errs = append(errs, fmt.Errorf("category %q: unknown type %q", id, info.Type))
		}
	}
	return errors.Join(errs...)
}
