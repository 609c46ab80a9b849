package util

import (
	"errors"
	"fmt"
	"os"
	"portfolioanalyzer/internal/domain"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
)

type Config struct {
	Provider     string                 `yaml:"provider"`
	FetchTimeout time.Duration          `yaml:"fetchTimeout"`
	Concurrency  int                    `yaml:"concurrency"`
	Alpaca       AlpacaSecrets          `yaml:"alpaca"`
	TaxBrackets  domain.TaxBracketTable `yaml:"taxBrackets"`
}

type AlpacaSecrets struct {
	ApiKey    string `yaml:"apiKey"`
	ApiSecret string `yaml:"apiSecret"`
	Endpoint  string `yaml:"endpoint"`
}

func DefaultConfig() Config {
	return Config{
		Provider:     ProviderYahoo,
		FetchTimeout: 10 * time.Second,
		Concurrency:  10,
		TaxBrackets:  domain.DefaultTaxBrackets(),
	}
}

func configFile() string {
	if f := os.Getenv("ANALYZER_CONFIG"); f != "" {
		return f
	}
	switch strings.ToLower(os.Getenv("ANALYZER_ENV")) {
	case "dev":
		return "config-dev.yaml"
	case "test":
		return "config-test.yaml"
	}
	return "/go/src/app/config.yaml"
}

// LoadConfig reads the yaml config for the current env. a missing file
// means defaults; anything set in the file overrides them
func LoadConfig() (*Config, error) {
	return LoadConfigFile(configFile())
}

func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	return parseConfig(f, cfg)
}

func parseConfig(in []byte, cfg Config) (*Config, error) {
	defaultBrackets := cfg.TaxBrackets
	cfg.TaxBrackets = nil
	if err := yaml.Unmarshal(in, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	merged := domain.TaxBracketTable{}
	for status, brackets := range defaultBrackets {
		merged[status] = brackets
	}
	for status, brackets := range cfg.TaxBrackets {
		merged[status] = brackets
	}
	cfg.TaxBrackets = merged

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	switch c.Provider {
	case ProviderYahoo, ProviderAlpaca:
	default:
		return fmt.Errorf("unknown quote provider %q", c.Provider)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	for status := range c.TaxBrackets {
		if _, err := domain.ParseFilingStatus(string(status)); err != nil {
			return err
		}
	}
	return c.TaxBrackets.Validate()
}
