// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfigPaths are searched in order when CONFIG_PATH is unset.
var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/iptrack/config.yaml",
}

// envMapping maps flat environment variable names to koanf paths.
// These are the names the deployment already uses, so they are kept
// stable rather than derived from struct layout.
var envMapping = map[string]string{
	"HOST":               "server.host",
	"PORT":               "server.port",
	"SERVER_TIMEOUT":     "server.timeout",
	"ENVIRONMENT":        "server.environment",
	"CORS_ORIGINS":       "server.cors_origins",
	"MONGODB_URI":        "database.uri",
	"DB_NAME":            "database.name",
	"DB_CONNECT_TIMEOUT": "database.connect_timeout",
	"JWT_SECRET":         "security.jwt_secret",
	"SESSION_TIMEOUT":    "security.session_timeout",
	"BCRYPT_COST":        "security.bcrypt_cost",
	"IPINFO_TOKEN":       "geoip.token",
	"GEOIP_BASE_URL":     "geoip.base_url",
	"GEOIP_TIMEOUT":      "geoip.timeout",
	"LOG_LEVEL":          "logging.level",
	"LOG_FORMAT":         "logging.format",
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		path, ok := envMapping[key]
		if !ok {
			return "", nil
		}
		// Comma-separated list settings become slices.
		if path == "server.cors_origins" {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return path, parts
		}
		return path, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
