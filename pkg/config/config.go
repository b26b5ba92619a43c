// Package config provides process configuration for the LLM cache demos:
// gateway endpoint, Redis connection, cache TTL and provider catalog.
// Configuration is an explicit object handed to the components that need
// it; nothing in this module reads process-wide mutable state after
// startup.
package config

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RedisConfig holds the shared store connection settings.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Addr returns the host:port address for the Redis client.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Config is the process configuration.
type Config struct {
	// GatewayURL is the LLM gateway URL, with or without the /v1 suffix
	GatewayURL string `yaml:"gateway_url"`

	// Redis is the shared cache store
	Redis RedisConfig `yaml:"redis"`

	// CacheTTLSeconds is the TTL applied to cached responses
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`

	// LogLevel is the minimum log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in defaults: local Redis, five-minute TTL.
func Default() Config {
	return Config{
		GatewayURL: "http://localhost:8787",
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		CacheTTLSeconds: 300,
		LogLevel:        "info",
	}
}

// FromEnv returns the defaults overridden by environment variables:
// GATEWAY_URL, REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB,
// CACHE_TTL (seconds) and LOG_LEVEL.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("GATEWAY_URL"); v != "" {
		cfg.GatewayURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			cfg.CacheTTLSeconds = ttl
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

// Load reads a YAML config file over the environment-derived defaults.
func Load(path string) (Config, error) {
	cfg := FromEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// GatewayAPIURL returns the gateway URL normalized to end in /v1, the
// base expected by OpenAI-compatible SDK surfaces.
func (c Config) GatewayAPIURL() string {
	base := strings.TrimRight(c.GatewayURL, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}

// CacheTTL returns the configured TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Print writes a human-readable configuration banner, masking the Redis
// password.
func (c Config) Print(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "LLM Cache Demo Configuration")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Gateway URL:     %s\n", c.GatewayURL)
	fmt.Fprintf(w, "Gateway API URL: %s\n", c.GatewayAPIURL())
	fmt.Fprintf(w, "Redis:           %s (db %d)\n", c.Redis.Addr(), c.Redis.DB)
	if c.Redis.Password != "" {
		fmt.Fprintf(w, "Redis password:  %s\n", strings.Repeat("*", len(c.Redis.Password)))
	}
	fmt.Fprintf(w, "Cache TTL:       %s\n", c.CacheTTL())
	fmt.Fprintln(w, "Available providers:")
	for _, p := range Providers() {
		fmt.Fprintf(w, "  - %-10s model=%s host=%s\n", p.Name, p.Model, p.CustomHost)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
