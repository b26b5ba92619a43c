package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Redis.Addr() != "localhost:6379" {
		t.Errorf("Redis.Addr() = %q, want localhost:6379", cfg.Redis.Addr())
	}
	if cfg.CacheTTL() != 300*time.Second {
		t.Errorf("CacheTTL() = %v, want 300s", cfg.CacheTTL())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GATEWAY_URL", "https://gw.example.com")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := FromEnv()

	if cfg.GatewayURL != "https://gw.example.com" {
		t.Errorf("GatewayURL = %q", cfg.GatewayURL)
	}
	if cfg.Redis.Addr() != "redis.internal:6380" {
		t.Errorf("Redis.Addr() = %q", cfg.Redis.Addr())
	}
	if cfg.Redis.Password != "hunter2" {
		t.Errorf("Redis.Password = %q", cfg.Redis.Password)
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("CacheTTL() = %v, want 1m", cfg.CacheTTL())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestFromEnv_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("REDIS_PORT", "not-a-port")
	t.Setenv("CACHE_TTL", "-5")

	cfg := FromEnv()

	if cfg.Redis.Port != 6379 {
		t.Errorf("Redis.Port = %d, want default 6379", cfg.Redis.Port)
	}
	if cfg.CacheTTLSeconds != 300 {
		t.Errorf("CacheTTLSeconds = %d, want default 300", cfg.CacheTTLSeconds)
	}
}

func TestGatewayAPIURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "bare url", url: "http://gw.example.com", want: "http://gw.example.com/v1"},
		{name: "trailing slash", url: "http://gw.example.com/", want: "http://gw.example.com/v1"},
		{name: "already versioned", url: "http://gw.example.com/v1", want: "http://gw.example.com/v1"},
		{name: "versioned with slash", url: "http://gw.example.com/v1/", want: "http://gw.example.com/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{GatewayURL: tt.url}
			if got := cfg.GatewayAPIURL(); got != tt.want {
				t.Errorf("GatewayAPIURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
gateway_url: https://gw.cluster.local
redis:
  host: redis-master
  port: 6379
  password: secret
cache_ttl_seconds: 120
log_level: warn
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GatewayURL != "https://gw.cluster.local" {
		t.Errorf("GatewayURL = %q", cfg.GatewayURL)
	}
	if cfg.Redis.Host != "redis-master" {
		t.Errorf("Redis.Host = %q", cfg.Redis.Host)
	}
	if cfg.CacheTTL() != 2*time.Minute {
		t.Errorf("CacheTTL() = %v, want 2m", cfg.CacheTTL())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestProvider(t *testing.T) {
	p := Provider("ollama")
	if p.Model != "llama3" {
		t.Errorf("ollama model = %q, want llama3", p.Model)
	}

	fp8 := Provider("llama-fp8")
	if fp8.Provider != "openai" {
		t.Errorf("llama-fp8 provider slug = %q, want openai (vLLM is OpenAI-compatible)", fp8.Provider)
	}

	// Unknown names fall back to the default provider
	fallback := Provider("does-not-exist")
	if fallback.Name != DefaultProvider {
		t.Errorf("fallback provider = %q, want %q", fallback.Name, DefaultProvider)
	}
}

func TestProviderNames_Sorted(t *testing.T) {
	names := ProviderNames()
	if len(names) < 2 {
		t.Fatalf("expected at least 2 providers, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestPrint(t *testing.T) {
	cfg := Default()
	cfg.Redis.Password = "secret"

	var buf bytes.Buffer
	cfg.Print(&buf)

	out := buf.String()
	for _, want := range []string{"Gateway URL", "ollama", "llama-fp8", "Cache TTL"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Error("Print must mask the Redis password")
	}
}
