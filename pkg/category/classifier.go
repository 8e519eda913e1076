package category

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/yurifrl/kakeibu/pkg/models"
)

// Uncategorized is returned when nothing matched and no default is configured.
const Uncategorized = "uncategorized"

// Classifier resolves a category for a description. It is a pure function of
// its tables: the same (description, type) always yields the same category.
type Classifier struct {
	mapping *Mapping
	rules   []normalizedRule
}

type normalizedRule struct {
	Rule
	normalized string
	lower      string
}

func NewClassifier(m *Mapping) *Classifier {
	c := &Classifier{mapping: m}
	for _, r := range m.Rules {
		c.rules = append(c.rules, normalizedRule{
			Rule:       r,
			normalized: normalize(r.Key),
			lower:      strings.ToLower(r.Key),
		})
	}
	return c
}

// Classify returns the category id for a description. Lookups run in table
// order and the first hit wins; there is no longest-match preference.
func (c *Classifier) Classify(description string, t models.Type) string {
	return c.resolve(c.match(description, t))
}

func (c *Classifier) match(description string, t models.Type) string {
	trimmed := strings.TrimSpace(description)
	for _, r := range c.rules {
		if trimmed == r.Key {
			return r.Category
		}
	}

	normalized := normalize(description)
	for _, r := range c.rules {
		if r.normalized != "" && strings.HasPrefix(normalized, r.normalized) {
			return r.Category
		}
	}

	lower := strings.ToLower(description)
	for _, r := range c.rules {
		if r.lower != "" && strings.Contains(lower, r.lower) {
			return r.Category
		}
	}

	for _, g := range c.mapping.Fallbacks[t] {
		for _, kw := range g.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return g.Category
			}
		}
	}

	if id, ok := c.mapping.Defaults[t]; ok && id != "" {
		return id
	}
	return Uncategorized
}

// resolve follows the subcategory table one level.
func (c *Classifier) resolve(id string) string {
	if parent, ok := c.mapping.Subcategories[id]; ok && parent != "" {
		return parent
	}
	return id
}

// Lookup returns display metadata for a category id.
func (c *Classifier) Lookup(id string) (Info, bool) {
	info, ok := c.mapping.Categories[id]
	return info, ok
}

// normalize applies NFKC (full-width letters and digits become ASCII) and
// collapses whitespace runs into one space.
func normalize(s string) string {
	return strings.Join(strings.FieldsFunc(norm.NFKC.String(s), unicode.IsSpace), " ")
}
