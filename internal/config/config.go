// Package config defines the Config contract this gateway consumes (spec
// §6): the recognized YAML keys, their Go types, defaults, and
// struct-tag validation. Reading `~/.llmux/config.yaml` from disk and any
// CLI-flag/env-var override layering are left to cmd/llmuxd — parsing of
// config *files* is out of scope per spec §1 Non-goals, but the decoded
// shape and its defaulting/validation rules live here.
//
// Grounded on the teacher's lack of a config package: this follows the
// enrichment example's internal/config (vellankikoti-kubilitics-os-emergent)
// for section layout and on DefaultConfig/Validate naming, adapted to the
// §6 recognized-keys table instead of that example's sections.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Server controls the listen socket (spec §6: server.port/.hostname/.cors).
type Server struct {
	Port     int      `yaml:"port" validate:"min=1,max=65535"`
	Hostname string   `yaml:"hostname"`
	CORS     []string `yaml:"cors"`
}

// Routing controls model->provider resolution and retry/rotation policy
// (spec §6: routing.*, consumed by internal/router and internal/handler).
type Routing struct {
	DefaultProvider   string            `yaml:"defaultProvider" validate:"required"`
	ModelMapping      map[string]string `yaml:"modelMapping"`
	FallbackOrder     []string          `yaml:"fallbackOrder"`
	RotateOn429       bool              `yaml:"rotateOn429"`
	MaxRetryAttempts  int               `yaml:"maxRetryAttempts" validate:"min=1,max=1000"`
}

// Amp controls upstream-proxy mode, where this gateway forwards to a
// further upstream instead of calling providers directly (spec §6: amp.*).
type Amp struct {
	Enabled                     bool              `yaml:"enabled"`
	UpstreamURL                 string            `yaml:"upstreamUrl" validate:"omitempty,url"`
	UpstreamAPIKey              string            `yaml:"upstreamApiKey"`
	ModelMappings               map[string]string `yaml:"modelMappings"`
	RestrictManagementToLocalhost bool            `yaml:"restrictManagementToLocalhost"`
}

// Config is the full decoded shape of ~/.llmux/config.yaml (spec §6).
type Config struct {
	Server  Server  `yaml:"server"`
	Routing Routing `yaml:"routing"`
	Amp     Amp     `yaml:"amp"`
}

// Default returns the built-in defaults applied before a YAML file is
// merged in (spec §6: routing.maxRetryAttempts default 20).
func Default() Config {
	return Config{
		Server: Server{
			Port:     8080,
			Hostname: "127.0.0.1",
			CORS:     []string{"*"},
		},
		Routing: Routing{
			DefaultProvider:  "openai_chat",
			MaxRetryAttempts: 20,
			RotateOn429:      true,
		},
	}
}

// Load decodes YAML config bytes over the defaults and validates the
// result. An empty or absent file is not an error — Default() alone is
// valid.
func Load(yamlBytes []byte) (Config, error) {
	cfg := Default()
	if len(yamlBytes) > 0 {
		if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode yaml: %w", err)
		}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate runs struct-tag validation (bounds-checks
// routing.maxRetryAttempts, URL-shape amp.upstreamUrl, etc. — spec §6).
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	if cfg.Amp.Enabled && cfg.Amp.UpstreamURL == "" {
		return fmt.Errorf("config: amp.enabled requires amp.upstreamUrl")
	}
	return nil
}
