// Package config assembles runtime configuration from the environment, with
// an optional YAML overrides file for non-secret values. Secrets only ever
// come from the environment.
package config

import (
	"fmt"
	"os"
)

type Config struct {
	DBPath   string
	Timezone string
	Server   ServerConfig
	LLM      LLMConfig
	Decay    DecayConfig
	Archive  ArchiveConfig
}

type ServerConfig struct {
	Addr string
}

type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// DecayConfig controls the periodic memory retention sweep.
type DecayConfig struct {
	Enabled  bool
	Schedule string
}

// ArchiveConfig is the object storage used for completed essays. Enabled
// only when both credentials are present.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	dbPath := os.Getenv("EVOWRITE_DB")
	if dbPath == "" {
		dbPath = "evowrite.db"
	}

	timezone := os.Getenv("TZ")
	if timezone == "" {
		timezone = "UTC"
	}

	llmConfig, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:   dbPath,
		Timezone: timezone,
		Server:   loadServerConfig(),
		LLM:      llmConfig,
		Decay:    loadDecayConfig(),
		Archive:  loadArchiveConfig(),
	}

	if path := os.Getenv("EVOWRITE_CONFIG"); path != "" {
		if err := applyOverrides(cfg, path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	addr := os.Getenv("EVOWRITE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return ServerConfig{Addr: addr}
}

func loadDecayConfig() DecayConfig {
	enabled := os.Getenv("DECAY_SWEEP_ENABLED") != "false"

	schedule := os.Getenv("DECAY_SWEEP_SCHEDULE")
	if schedule == "" {
		schedule = "0 3 * * *" // daily at 03:00
	}

	return DecayConfig{
		Enabled:  enabled,
		Schedule: schedule,
	}
}

func loadArchiveConfig() ArchiveConfig {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "evowrite-essays"
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")

	return ArchiveConfig{
		Enabled:   accessKey != "" && secretKey != "",
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    bucket,
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
}

func loadLLMConfig() (LLMConfig, error) {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "claude"
	}

	apiKey, err := getAPIKey(provider)
	if err != nil {
		return LLMConfig{}, err
	}

	return LLMConfig{
		Provider: provider,
		APIKey:   apiKey,
		Model:    os.Getenv("LLM_MODEL"),
		BaseURL:  os.Getenv("LLM_BASE_URL"),
	}, nil
}

func getAPIKey(provider string) (string, error) {
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		return key, nil
	}

	switch provider {
	case "claude":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return key, nil
	case "openai", "together", "fireworks", "groq", "deepseek":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return "", fmt.Errorf("OPENAI_API_KEY not set")
		}
		return key, nil
	case "ollama":
		// Ollama doesn't need an API key
		return "ollama", nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}
}
