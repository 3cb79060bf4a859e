package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Strategy)) {
	case "ollama", "classifier", "keywords":
	default:
		return fmt.Errorf("strategy must be ollama, classifier or keywords, got %q", cfg.Strategy)
	}

	if strings.EqualFold(cfg.Strategy, "ollama") {
		if err := validateProviderConfig(cfg.Provider); err != nil {
			return err
		}
	}
	if strings.EqualFold(cfg.Strategy, "classifier") {
		if strings.TrimSpace(cfg.Classifier.ModelDir) == "" {
			return errors.New("classifier.model_dir must be set when strategy is classifier")
		}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.ActivationLevel)) {
	case "", "metadata", "redacted", "full":
	default:
		return fmt.Errorf("logging.activation_level must be metadata, redacted or full, got %q", cfg.Logging.ActivationLevel)
	}

	if err := validateActivationConfig(cfg.Activation); err != nil {
		return err
	}

	return validateTelemetryConfig(cfg.Telemetry)
}

func validateProviderConfig(p ProviderConfig) error {
	if strings.TrimSpace(p.BaseURL) == "" {
		return errors.New("provider.base_url must be set")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("provider.base_url is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("provider.base_url must be http or https")
	}
	if strings.TrimSpace(p.Model) == "" {
		return errors.New("provider.model must be set")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("provider.temperature must be in [0, 2], got %v", p.Temperature)
	}
	if p.TopP < 0 || p.TopP > 1 {
		return fmt.Errorf("provider.top_p must be in [0, 1], got %v", p.TopP)
	}
	return nil
}

func validateActivationConfig(a ActivationConfig) error {
	for i, s := range a.Sinks {
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case "stdout":
		case "file_jsonl":
			if strings.TrimSpace(s.Path) == "" {
				return fmt.Errorf("activation sink %d (file_jsonl) missing path", i)
			}
		case "webhook":
			if strings.TrimSpace(s.URL) == "" {
				return fmt.Errorf("activation sink %d (webhook) missing url", i)
			}
			u, err := url.Parse(s.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("activation sink %d (webhook) has invalid url", i)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("activation sink %d (webhook) url must be http or https", i)
			}
		default:
			return fmt.Errorf("activation sink %d has unknown type %q", i, s.Type)
		}
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	if t.Protocol != "" {
		switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
		case "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
		}
	}
	return nil
}
