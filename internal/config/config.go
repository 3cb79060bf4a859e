// Package config loads the service configuration from YAML.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Strategy   string           `yaml:"strategy"` // ollama | classifier | keywords
	Provider   ProviderConfig   `yaml:"provider"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Logging    LoggingConfig    `yaml:"logging"`
	Activation ActivationConfig `yaml:"activation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`            // HTTP listen address, e.g. ":8080"
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS; empty means allow all
}

type ProviderConfig struct {
	BaseURL             string  `yaml:"base_url"` // e.g. "http://localhost:11434"
	Model               string  `yaml:"model"`    // e.g. "llama3.2:3b"
	TimeoutSeconds      int     `yaml:"timeout_seconds"`
	ProbeTimeoutSeconds int     `yaml:"probe_timeout_seconds"`
	Temperature         float64 `yaml:"temperature"`
	TopP                float64 `yaml:"top_p"`
	NumPredict          int     `yaml:"num_predict"`
}

type ClassifierConfig struct {
	ModelDir string `yaml:"model_dir"`
	SeqLen   int    `yaml:"seq_len"`
}

type CatalogConfig struct {
	Path string `yaml:"path"` // optional condition profile override
}

type LoggingConfig struct {
	ActivationLevel string `yaml:"activation_level"` // metadata | redacted | full
}

type ActivationConfig struct {
	Sinks     []SinkConfig `yaml:"sinks"`
	QueueSize int          `yaml:"queue_size"`
	Workers   int          `yaml:"workers"`
}

type SinkConfig struct {
	Type    string            `yaml:"type"` // stdout | file_jsonl | webhook
	Path    string            `yaml:"path"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
	Service  string `yaml:"service"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Strategy == "" {
		cfg.Strategy = "ollama"
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "http://localhost:11434"
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "llama3.2:3b"
	}
	if cfg.Provider.TimeoutSeconds <= 0 {
		cfg.Provider.TimeoutSeconds = 30
	}
	if cfg.Provider.ProbeTimeoutSeconds <= 0 {
		cfg.Provider.ProbeTimeoutSeconds = 10
	}
	if cfg.Provider.Temperature == 0 {
		cfg.Provider.Temperature = 0.1
	}
	if cfg.Provider.TopP == 0 {
		cfg.Provider.TopP = 0.9
	}
	if cfg.Provider.NumPredict == 0 {
		cfg.Provider.NumPredict = 200
	}
	if cfg.Classifier.SeqLen <= 0 {
		cfg.Classifier.SeqLen = 256
	}
	if cfg.Logging.ActivationLevel == "" {
		cfg.Logging.ActivationLevel = "metadata"
	}
	if cfg.Activation.QueueSize <= 0 {
		cfg.Activation.QueueSize = 1000
	}
	if cfg.Activation.Workers <= 0 {
		cfg.Activation.Workers = 1
	}
	if cfg.Telemetry.Service == "" {
		cfg.Telemetry.Service = "mindsift"
	}
}
