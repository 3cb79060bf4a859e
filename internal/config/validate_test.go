package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "missing server addr",
			mutate: func(c *Config) { c.Server.Addr = "" },
			want:   "server.addr",
		},
		{
			name:   "unknown strategy",
			mutate: func(c *Config) { c.Strategy = "oracle" },
			want:   "strategy",
		},
		{
			name:   "missing provider url",
			mutate: func(c *Config) { c.Provider.BaseURL = "" },
			want:   "base_url",
		},
		{
			name:   "invalid provider url",
			mutate: func(c *Config) { c.Provider.BaseURL = "::://bad" },
			want:   "base_url",
		},
		{
			name:   "non-http provider url",
			mutate: func(c *Config) { c.Provider.BaseURL = "ftp://example.com" },
			want:   "http",
		},
		{
			name:   "missing provider model",
			mutate: func(c *Config) { c.Provider.Model = "" },
			want:   "model",
		},
		{
			name:   "temperature out of range",
			mutate: func(c *Config) { c.Provider.Temperature = 3.5 },
			want:   "temperature",
		},
		{
			name: "classifier without model dir",
			mutate: func(c *Config) {
				c.Strategy = "classifier"
				c.Classifier.ModelDir = ""
			},
			want: "model_dir",
		},
		{
			name:   "bad activation level",
			mutate: func(c *Config) { c.Logging.ActivationLevel = "verbose" },
			want:   "activation_level",
		},
		{
			name: "file sink without path",
			mutate: func(c *Config) {
				c.Activation.Sinks = []SinkConfig{{Type: "file_jsonl"}}
			},
			want: "missing path",
		},
		{
			name: "webhook sink with bad url",
			mutate: func(c *Config) {
				c.Activation.Sinks = []SinkConfig{{Type: "webhook", URL: "not a url"}}
			},
			want: "invalid url",
		},
		{
			name: "unknown sink type",
			mutate: func(c *Config) {
				c.Activation.Sinks = []SinkConfig{{Type: "kafka"}}
			},
			want: "unknown type",
		},
		{
			name: "telemetry enabled without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = ""
			},
			want: "endpoint",
		},
		{
			name: "telemetry bad protocol",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = "localhost:4317"
				c.Telemetry.Protocol = "udp"
			},
			want: "protocol",
		},
	}

	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(cfg)
		err := Validate(cfg)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q should mention %q", tc.name, err, tc.want)
		}
	}
}

func TestValidateAccepts(t *testing.T) {
	cfg := validConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg = validConfig()
	cfg.Strategy = "keywords"
	cfg.Provider = ProviderConfig{} // ignored for the keywords profile
	if err := Validate(cfg); err != nil {
		t.Fatalf("keywords profile should not require a provider: %v", err)
	}

	cfg = validConfig()
	cfg.Activation.Sinks = []SinkConfig{
		{Type: "stdout"},
		{Type: "file_jsonl", Path: "/tmp/events.jsonl"},
		{Type: "webhook", URL: "https://example.com/hook"},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("sink fan-out should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Strategy != "ollama" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Provider.TimeoutSeconds != 30 || cfg.Provider.ProbeTimeoutSeconds != 10 {
		t.Fatalf("unexpected provider timeout defaults: %+v", cfg.Provider)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9090"
strategy: keywords
logging:
  activation_level: redacted
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr not read: %s", cfg.Server.Addr)
	}
	if cfg.Strategy != "keywords" {
		t.Fatalf("strategy not read: %s", cfg.Strategy)
	}
	if cfg.Logging.ActivationLevel != "redacted" {
		t.Fatalf("logging level not read: %s", cfg.Logging.ActivationLevel)
	}
	if cfg.Provider.Model != "llama3.2:3b" {
		t.Fatalf("provider defaults not applied: %+v", cfg.Provider)
	}
	if cfg.Activation.QueueSize != 1000 || cfg.Activation.Workers != 1 {
		t.Fatalf("activation defaults not applied: %+v", cfg.Activation)
	}
}
