package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by the service.
const EnvPrefix = "ICONHOST_"

// ParseEnv loads configuration from environment variables. Struct tags name
// variables without the shared prefix: `env:"HTTP_ADDR"` reads
// ICONHOST_HTTP_ADDR.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// EnvName returns the full environment variable name for key.
func EnvName(key string) string {
	return EnvPrefix + key
}
