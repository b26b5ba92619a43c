package integration

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/llmgw/llmcache/internal/testutil"
	"github.com/llmgw/llmcache/pkg/cache"
	"github.com/llmgw/llmcache/pkg/gateway"
)

// setupRedis starts a Redis container for integration testing. Tests are
// skipped when no container runtime is available.
func setupRedis(t *testing.T) (string, testcontainers.Container) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Skipping integration test, cannot start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	t.Cleanup(func() { container.Terminate(ctx) })

	return host + ":" + port.Port(), container
}

func setupStack(t *testing.T, addr string, gatewayURL string) (*cache.Store, *cache.ResponseCache, *gateway.Client) {
	t.Helper()

	storeCfg := cache.DefaultConfig()
	storeCfg.Addr = addr

	store, err := cache.New(storeCfg)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	gwCfg := gateway.DefaultConfig(gatewayURL)
	gwCfg.Provider = "ollama"

	client, err := gateway.New(gwCfg)
	if err != nil {
		t.Fatalf("Failed to create gateway client: %v", err)
	}

	rc := cache.NewResponseCache(store, cache.NewKeyBuilder(store.Namespace()))
	return store, rc, client
}

func chatDescriptor(prompt string) cache.RequestDescriptor {
	return cache.RequestDescriptor{
		Provider: "ollama",
		Model:    "llama3",
		Messages: []cache.Message{{Role: "user", Content: prompt}},
		Params:   map[string]any{"max_tokens": 10, "temperature": 0.0},
	}
}

// TestFullCacheFlow exercises the complete flow against a real Redis:
// fingerprint -> miss -> gateway call -> cache write -> hit.
func TestFullCacheFlow(t *testing.T) {
	addr, _ := setupRedis(t)

	mock := testutil.NewMockGateway("Paris")
	defer mock.Close()

	_, rc, client := setupStack(t, addr, mock.URL())

	ctx := context.Background()
	desc := chatDescriptor("In one word, what is the capital of France?")

	// Request 1: cache miss, gateway is called
	out1, err := rc.GetOrCompute(ctx, desc, time.Minute, client.ComputeFor(desc), true)
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if out1.Hit {
		t.Error("Request 1 should be a miss")
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("Gateway request count = %d, want 1", mock.GetRequestCount())
	}

	// Request 2: served from Redis, gateway untouched
	out2, err := rc.GetOrCompute(ctx, desc, time.Minute, client.ComputeFor(desc), true)
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if !out2.Hit {
		t.Error("Request 2 should be a hit")
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("Gateway request count = %d, want still 1", mock.GetRequestCount())
	}

	content, err := gateway.ExtractContent(out2.Payload)
	if err != nil {
		t.Fatalf("ExtractContent failed: %v", err)
	}
	if content != "Paris" {
		t.Errorf("Cached content = %q, want Paris", content)
	}
}

// TestInvalidationFlow verifies pattern invalidation against real SCAN/DEL.
func TestInvalidationFlow(t *testing.T) {
	addr, _ := setupRedis(t)

	mock := testutil.NewMockGateway("pong")
	defer mock.Close()

	store, rc, client := setupStack(t, addr, mock.URL())

	ctx := context.Background()
	desc := chatDescriptor("ping")

	if _, err := rc.GetOrCompute(ctx, desc, time.Minute, client.ComputeFor(desc), true); err != nil {
		t.Fatalf("Seed request failed: %v", err)
	}

	if deleted := store.Invalidate(ctx, ""); deleted != 1 {
		t.Errorf("Invalidate removed %d keys, want 1", deleted)
	}

	out, err := rc.GetOrCompute(ctx, desc, time.Minute, client.ComputeFor(desc), true)
	if err != nil {
		t.Fatalf("Post-invalidation request failed: %v", err)
	}
	if out.Hit {
		t.Error("Request after invalidation should miss")
	}
	if mock.GetRequestCount() != 2 {
		t.Errorf("Gateway request count = %d, want 2", mock.GetRequestCount())
	}
}

// TestTTLExpiry verifies that entries expire in real Redis time.
func TestTTLExpiry(t *testing.T) {
	addr, _ := setupRedis(t)

	mock := testutil.NewMockGateway("pong")
	defer mock.Close()

	_, rc, client := setupStack(t, addr, mock.URL())

	ctx := context.Background()
	desc := chatDescriptor("ephemeral")

	if _, err := rc.GetOrCompute(ctx, desc, time.Second, client.ComputeFor(desc), true); err != nil {
		t.Fatalf("Seed request failed: %v", err)
	}

	// Wait past the TTL with slack for Redis expiry granularity
	time.Sleep(1500 * time.Millisecond)

	out, err := rc.GetOrCompute(ctx, desc, time.Second, client.ComputeFor(desc), true)
	if err != nil {
		t.Fatalf("Post-expiry request failed: %v", err)
	}
	if out.Hit {
		t.Error("Request after TTL expiry should miss")
	}
	if mock.GetRequestCount() != 2 {
		t.Errorf("Gateway request count = %d, want 2", mock.GetRequestCount())
	}
}

// TestDegradedStore verifies that a Redis outage after startup degrades to
// always-miss behavior instead of failing requests.
func TestDegradedStore(t *testing.T) {
	addr, container := setupRedis(t)

	mock := testutil.NewMockGateway("pong")
	defer mock.Close()

	_, rc, client := setupStack(t, addr, mock.URL())

	ctx := context.Background()
	desc := chatDescriptor("resilience check")

	if _, err := rc.GetOrCompute(ctx, desc, time.Minute, client.ComputeFor(desc), true); err != nil {
		t.Fatalf("Seed request failed: %v", err)
	}

	stopTimeout := 10 * time.Second
	if err := container.Stop(ctx, &stopTimeout); err != nil {
		t.Fatalf("Failed to stop Redis container: %v", err)
	}

	for i := 0; i < 3; i++ {
		out, err := rc.GetOrCompute(ctx, desc, time.Minute, client.ComputeFor(desc), true)
		if err != nil {
			t.Fatalf("Request %d with store down failed: %v", i+1, err)
		}
		if out.Hit {
			t.Errorf("Request %d with store down should be a miss", i+1)
		}
	}

	// seed + 3 degraded requests
	if got := mock.GetRequestCount(); got != 4 {
		t.Errorf("Gateway request count = %d, want 4", got)
	}
}
