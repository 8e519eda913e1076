package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/kakeibu/configs"
	"github.com/yurifrl/kakeibu/pkg/category"
	"github.com/yurifrl/kakeibu/pkg/parser"
	"github.com/yurifrl/kakeibu/pkg/sources"
)

// Config is the application configuration. Table paths left empty use the
// tables embedded in the binary.
type Config struct {
	Sources     string `mapstructure:"sources"`
	Categories  string `mapstructure:"categories"`
	Keywords    string `mapstructure:"keywords"`
	Output      string `mapstructure:"output"`
	LogLevel    string `mapstructure:"log_level"`
	UseCustomID bool   `mapstructure:"use_custom_id"`
	YNAB        YNAB   `mapstructure:"ynab"`
}

// YNAB holds the sync target. The token itself is read from the environment.
type YNAB struct {
	BudgetID string `mapstructure:"budget_id"`
	TokenEnv string `mapstructure:"token_env"`
}

// Token returns the YNAB personal access token.
func (y YNAB) Token() string {
	return os.Getenv(y.TokenEnv)
}

// flag name -> config key
var flagKeys = map[string]string{
	"sources":       "sources",
	"categories":    "categories",
	"keywords":      "keywords",
	"output":        "output",
	"log-level":     "log_level",
	"use-custom-id": "use_custom_id",
	"budget":        "ynab.budget_id",
}

// Build loads configuration from cfgFile (or kakeibu.yaml in the working
// directory), a .env file, KAKEIBU_* environment variables and flags, in
// increasing precedence. flags may be nil.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for _, key := range []string{"sources", "categories", "keywords", "output", "ynab.budget_id"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("log_level", "info")
	v.SetDefault("use_custom_id", true)
	v.SetDefault("ynab.token_env", "YNAB_TOKEN")

	v.SetEnvPrefix("KAKEIBU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("kakeibu")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Tables is every lookup table the pipeline needs.
type Tables struct {
	Sources    *sources.Table
	Categories *category.Mapping
	Keywords   parser.Keywords
}

// LoadTables reads the configured tables, falling back to the embedded ones.
func (c *Config) LoadTables() (*Tables, error) {
	var (
		t   Tables
		err error
	)
	if c.Sources != "" {
		t.Sources, err = sources.Load(c.Sources)
	} else {
		t.Sources, err = sources.Parse(configs.Sources)
	}
	if err != nil {
		return nil, err
	}

	if c.Categories != "" {
		t.Categories, err = category.Load(c.Categories)
	} else {
		t.Categories, err = category.Parse(configs.Categories)
	}
	if err != nil {
		return nil, err
	}

	if c.Keywords != "" {
		t.Keywords, err = parser.LoadKeywords(c.Keywords)
	} else {
		t.Keywords, err = parser.ParseKeywords(configs.Keywords)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DefaultTables returns the embedded tables.
func DefaultTables() (*Tables, error) {
	return (&Config{}).LoadTables()
}
