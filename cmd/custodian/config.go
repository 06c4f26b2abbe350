package main

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// RunConfig drives the pipeline subcommand. Paths left empty skip the
// corresponding artifact.
type RunConfig struct {
	Input struct {
		Path      string `yaml:"path" toml:"path"`
		Delimiter string `yaml:"delimiter" toml:"delimiter"`
	} `yaml:"input" toml:"input"`
	Output struct {
		Cleaned  string `yaml:"cleaned" toml:"cleaned"`
		Masked   string `yaml:"masked" toml:"masked"`
		Parquet  string `yaml:"parquet" toml:"parquet"`
		Failures string `yaml:"failures" toml:"failures"`
		Actions  string `yaml:"actions" toml:"actions"`
	} `yaml:"output" toml:"output"`
	Reports struct {
		Profile    bool `yaml:"profile" toml:"profile"`
		PII        bool `yaml:"pii" toml:"pii"`
		Validation bool `yaml:"validation" toml:"validation"`
		CleanLog   bool `yaml:"clean_log" toml:"clean_log"`
	} `yaml:"reports" toml:"reports"`
}

// LoadRunConfig reads a YAML or TOML pipeline config, picked by extension.
func LoadRunConfig(path string) (*RunConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &RunConfig{}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q (want .yaml, .yml or .toml)", ext)
	}
	if cfg.Input.Path == "" {
		return nil, fmt.Errorf("%s: input.path is required", path)
	}
	return cfg, nil
}
