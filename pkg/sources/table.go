package sources

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DetectionRule confirms a source from the decoded header or the file name.
type DetectionRule struct {
	SourceID        string   `yaml:"-"`
	HeaderPatterns  []string `yaml:"headerPatterns"`
	FileNamePattern string   `yaml:"fileNamePattern"`

	fileName *regexp.Regexp
}

// Table is the descriptor table plus detection rules, both in declaration order.
type Table struct {
	Descriptors []*Descriptor
	Rules       []*DetectionRule

	byID map[string]*Descriptor
}

type tableFile struct {
	Sources   yaml.Node `yaml:"sources"`
	Detection yaml.Node `yaml:"detection"`
}

// Load reads a sources YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a sources table. Malformed descriptors are
// rejected here rather than when a file is parsed.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources yaml: %w", err)
	}

	t := &Table{byID: make(map[string]*Descriptor)}
	var errs []error

	err := eachEntry(&f.Sources, func(id string, node *yaml.Node) error {
		d := &Descriptor{}
		if err := node.Decode(d); err != nil {
			return fmt.Errorf("source %q: %w", id, err)
		}
		d.ID = id
		if err := d.validate(); err != nil {
			errs = append(errs, err)
			return nil
		}
		t.Descriptors = append(t.Descriptors, d)
		t.byID[id] = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachEntry(&f.Detection, func(id string, node *yaml.Node) error {
		r := &DetectionRule{}
		if err := node.Decode(r); err != nil {
			return fmt.Errorf("detection rule %q: %w", id, err)
		}
		r.SourceID = id
		if err := r.validate(); err != nil {
			errs = append(errs, err)
			return nil
		}
		t.Rules = append(t.Rules, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(t.Descriptors) == 0 {
		return nil, errors.New("sources table has no descriptors")
	}
	return t, nil
}

// Get returns the descriptor with the given id.
func (t *Table) Get(id string) (*Descriptor, bool) {
	d, ok := t.byID[id]
	return d, ok
}

func (r *DetectionRule) validate() error {
	if len(r.HeaderPatterns) == 0 && r.FileNamePattern == "" {
		return fmt.Errorf("detection rule %q: needs headerPatterns or fileNamePattern", r.SourceID)
	}
	if r.FileNamePattern != "" {
		re, err := regexp.Compile(r.FileNamePattern)
		if err != nil {
			return fmt.Errorf("detection rule %q: %w", r.SourceID, err)
		}
		r.fileName = re
	}
	return nil
}

// eachEntry walks a YAML mapping in document order.
func eachEntry(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
