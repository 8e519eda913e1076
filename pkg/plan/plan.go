package plan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/kakeibu/pkg/importer"
)

type YNABConfig struct {
	BudgetID string            `yaml:"budget_id"`
	TokenEnv string            `yaml:"token_env"`
	Accounts map[string]string `yaml:"accounts"`
}

// Plan lists the statements of one batch and where to push the ledger.
type Plan struct {
	YNAB       YNABConfig  `yaml:"ynab"`
	Statements []Statement `yaml:"statements"`
}

type Statement struct {
	File    string `yaml:"file"`
	Source  string `yaml:"source"`
	Account string `yaml:"account"`
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Statements) == 0 {
		return nil, fmt.Errorf("plan has no statements")
	}
	for i, st := range p.Statements {
		if st.File == "" {
			return nil, fmt.Errorf("statement %d has no file", i+1)
		}
	}
	return &p, nil
}

// Path returns the statement file path with a leading ~ expanded.
func (s Statement) Path() (string, error) {
	if strings.HasPrefix(s.File, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, s.File[2:]), nil
	}
	return s.File, nil
}

// AccountID resolves the statement account through the plan's account
// aliases. Unknown names are taken as raw YNAB account ids.
func (p *Plan) AccountID(st Statement) string {
	if id, ok := p.YNAB.Accounts[st.Account]; ok {
		return id
	}
	return st.Account
}

// Files returns the importer inputs of every statement, in plan order.
func (p *Plan) Files() ([]importer.File, error) {
	files := make([]importer.File, 0, len(p.Statements))
	for _, st := range p.Statements {
		path, err := st.Path()
		if err != nil {
			return nil, err
		}
		f := importer.FromPath(path)
		f.Source = st.Source
		files = append(files, f)
	}
	return files, nil
}

// Accounts groups statement file names by resolved YNAB account id.
func (p *Plan) Accounts() map[string][]string {
	out := make(map[string][]string)
	for _, st := range p.Statements {
		if st.Account == "" {
			continue
		}
		id := p.AccountID(st)
		out[id] = append(out[id], filepath.Base(st.File))
	}
	return out
}

func (p *Plan) Print(w io.Writer) {
	fmt.Fprintf(w, "YNAB budget: %s\n", p.YNAB.BudgetID)
	for i, st := range p.Statements {
		source := st.Source
		if source == "" {
			source = "auto"
		}
		fmt.Fprintf(w, "[%d] source=%s file=%s account=%s\n", i+1, source, st.File, st.Account)
	}
}
