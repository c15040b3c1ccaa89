package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Gateway backends selectable for the client.
const (
	BackendRemote  = "remote"
	BackendFixture = "fixture"
)

// ClientConfig configures the terminal client.
type ClientConfig struct {
	Environment    string        `env:"HIRFA_ENV"             envDefault:"development"`
	APIBaseURL     string        `env:"HIRFA_API_BASE_URL"    envDefault:"http://localhost:8080"`
	Backend        string        `env:"HIRFA_BACKEND"         envDefault:"remote"`
	StatePath      string        `env:"HIRFA_STATE_PATH"      envDefault:"hirfa-state.db"`
	RequestTimeout time.Duration `env:"HIRFA_REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel       string        `env:"HIRFA_LOG_LEVEL"       envDefault:"warn"`
}

func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func (c ClientConfig) Validate() error {
	switch c.Backend {
	case BackendRemote, BackendFixture:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == BackendRemote && c.APIBaseURL == "" {
		return fmt.Errorf("api base url is required for the remote backend")
	}
	return nil
}
