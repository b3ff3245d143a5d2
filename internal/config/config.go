// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

// Package config loads application configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//  1. Built-in defaults
//  2. Optional YAML config file (CONFIG_PATH or ./config.yaml)
//  3. Environment variables
//
// Settings without a safe default (Mongo URI, JWT secret, ipinfo token)
// fail Validate and abort startup rather than falling back at runtime.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	GeoIP    GeoIPConfig    `koanf:"geoip"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout bounds request read/write on the listener.
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". Production responses
	// never include error detail beyond the mapped message.
	Environment string `koanf:"environment"`

	// CORSOrigins lists allowed origins. "*" allows all.
	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig holds MongoDB connection settings.
type DatabaseConfig struct {
	// URI is the MongoDB connection string. Required.
	URI string `koanf:"uri"`

	// Name is the database name holding the admins, users and
	// ip_data collections.
	Name string `koanf:"name"`

	// ConnectTimeout bounds the initial connect and ping.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// SecurityConfig holds token and password settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens (HMAC-SHA256). Required,
	// minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the token lifetime.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`
}

// GeoIPConfig holds third-party geolocation lookup settings.
type GeoIPConfig struct {
	// Token authenticates against the ipinfo.io Lite API. Required.
	Token string `koanf:"token"`

	// BaseURL is the lookup endpoint prefix. Overridable for tests.
	BaseURL string `koanf:"base_url"`

	// Timeout is the fixed outbound request timeout.
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        5000,
			Timeout:     30 * time.Second,
			Environment: "development",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			URI:            "",
			Name:           "raadtech_db",
			ConnectTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:      "",
			SessionTimeout: 24 * time.Hour,
			BcryptCost:     12,
		},
		GeoIP: GeoIPConfig{
			Token:   "",
			BaseURL: "https://api.ipinfo.io/lite",
			Timeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks that required settings are present and well formed.
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.Security.JWTSecret))
	}
	if c.GeoIP.Token == "" {
		return fmt.Errorf("IPINFO_TOKEN is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("environment must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
