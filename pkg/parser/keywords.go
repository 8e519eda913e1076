package parser

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keywords drive the internal transfer filter.
type Keywords struct {
	InternalTransfer []string `yaml:"internalTransfer"`
	Fee              []string `yaml:"fee"`
}

// LoadKeywords reads a keywords YAML file.
func LoadKeywords(path string) (Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Keywords{}, fmt.Errorf("failed to read keywords file: %w", err)
	}
	return ParseKeywords(data)
}

func ParseKeywords(data []byte) (Keywords, error) {
	var k Keywords
	if err := yaml.Unmarshal(data, &k); err != nil {
		return Keywords{}, fmt.Errorf("failed to parse keywords yaml: %w", err)
	}
	return k, nil
}

// IsInternalTransfer reports whether a row moves money between the user's own
// accounts. Fee rows are kept even when they mention a transfer.
func (k Keywords) IsInternalTransfer(description string) bool {
	return containsAny(description, k.InternalTransfer) && !containsAny(description, k.Fee)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
