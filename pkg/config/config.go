// Package config loads the gateway connection settings from api.json.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (HYPERSLOP_*)
//  2. Configuration file (api.json)
//  3. Default values
//
// A missing, unparsable or incomplete file is reported to the caller; the
// process is expected to keep running with an unconfigured tool surface
// rather than crash.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures everything needed to reach the HyperSlop gateway.
type Config struct {
	// URL is the gateway base address.
	URL string `mapstructure:"url" validate:"required,url"`

	// Key is the API credential attached to every gateway call.
	Key string `mapstructure:"key" validate:"required"`

	// Node is the home node identifier: the only node this process may
	// mutate.
	Node string `mapstructure:"node" validate:"required"`

	// TimeoutSeconds bounds a single gateway call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gte=1,lte=600"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetEnvPrefix("HYPERSLOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"url", "key", "node", "timeout_seconds", "logging.level"} {
		_ = v.BindEnv(key)
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("logging.level", "INFO")
}
