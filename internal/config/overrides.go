package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overrides is the YAML overrides file schema. Only non-secret knobs are
// representable; API keys and storage credentials stay in the environment.
type overrides struct {
	DBPath   string `yaml:"db_path"`
	Addr     string `yaml:"addr"`
	Timezone string `yaml:"timezone"`
	LLM      struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"llm"`
	Decay struct {
		Enabled  *bool  `yaml:"enabled"`
		Schedule string `yaml:"schedule"`
	} `yaml:"decay"`
	Archive struct {
		Endpoint string `yaml:"endpoint"`
		Bucket   string `yaml:"bucket"`
	} `yaml:"archive"`
}

func applyOverrides(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var o overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.Addr != "" {
		cfg.Server.Addr = o.Addr
	}
	if o.Timezone != "" {
		cfg.Timezone = o.Timezone
	}
	if o.LLM.Provider != "" {
		cfg.LLM.Provider = o.LLM.Provider
	}
	if o.LLM.Model != "" {
		cfg.LLM.Model = o.LLM.Model
	}
	if o.LLM.BaseURL != "" {
		cfg.LLM.BaseURL = o.LLM.BaseURL
	}
	if o.Decay.Enabled != nil {
		cfg.Decay.Enabled = *o.Decay.Enabled
	}
	if o.Decay.Schedule != "" {
		cfg.Decay.Schedule = o.Decay.Schedule
	}
	if o.Archive.Endpoint != "" {
		cfg.Archive.Endpoint = o.Archive.Endpoint
	}
	if o.Archive.Bucket != "" {
		cfg.Archive.Bucket = o.Archive.Bucket
	}

	return nil
}
