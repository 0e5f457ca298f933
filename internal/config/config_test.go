package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Routing.MaxRetryAttempts != 20 {
		t.Errorf("got maxRetryAttempts=%d, want 20", cfg.Routing.MaxRetryAttempts)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("got port=%d, want 8080", cfg.Server.Port)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_MergesOverYAML(t *testing.T) {
	yamlBytes := []byte(`
server:
  port: 9090
routing:
  defaultProvider: anthropic
  maxRetryAttempts: 5
`)
	cfg, err := Load(yamlBytes)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("got port=%d, want 9090", cfg.Server.Port)
	}
	if cfg.Routing.DefaultProvider != "anthropic" {
		t.Errorf("got defaultProvider=%q", cfg.Routing.DefaultProvider)
	}
	if cfg.Routing.MaxRetryAttempts != 5 {
		t.Errorf("got maxRetryAttempts=%d, want 5", cfg.Routing.MaxRetryAttempts)
	}
}

func TestValidate_RejectsOutOfRangePort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for port=0")
	}
}

func TestValidate_AmpEnabledRequiresUpstreamURL(t *testing.T) {
	cfg := Default()
	cfg.Amp.Enabled = true
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for amp.enabled without upstreamUrl")
	}
}

func TestValidate_RejectsMalformedUpstreamURL(t *testing.T) {
	cfg := Default()
	cfg.Amp.Enabled = true
	cfg.Amp.UpstreamURL = "::not a url::"
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for malformed upstreamUrl")
	}
}
