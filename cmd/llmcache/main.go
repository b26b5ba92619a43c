// Command llmcache runs cache measurement scenarios against an LLM gateway
// backed by a shared Redis response cache. It demonstrates the miss-then-hit
// flow and prints a per-scenario summary of hit rates and latencies.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llmgw/llmcache/pkg/cache"
	"github.com/llmgw/llmcache/pkg/config"
	"github.com/llmgw/llmcache/pkg/gateway"
	"github.com/llmgw/llmcache/pkg/harness"
	"github.com/llmgw/llmcache/pkg/logging"
)

var version = "dev"

type options struct {
	configPath string
	provider   string
	scenario   string
	requests   int
	clearCache bool
	pretty     bool
}

func main() {
	opts := &options{}

	root := &cobra.Command{
		Use:     "llmcache",
		Short:   "Redis response cache scenarios for an LLM gateway",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	root.Flags().StringVar(&opts.configPath, "config", "", "path to YAML config file (default: environment)")
	root.Flags().StringVar(&opts.provider, "provider", config.DefaultProvider,
		fmt.Sprintf("upstream provider (%s)", strings.Join(config.ProviderNames(), ", ")))
	root.Flags().StringVar(&opts.scenario, "scenario", "all", "scenario to run (baseline, repeat, all)")
	root.Flags().IntVar(&opts.requests, "requests", 5, "requests per scenario")
	root.Flags().BoolVar(&opts.clearCache, "clear-cache", false, "invalidate the cache namespace before running")
	root.Flags().BoolVar(&opts.pretty, "pretty", false, "human-readable log output")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: opts.pretty,
		Output: os.Stderr,
	})

	cfg.Print(os.Stdout)

	if opts.requests < 1 {
		return fmt.Errorf("--requests must be at least 1, got %d", opts.requests)
	}

	storeCfg := cache.DefaultConfig()
	storeCfg.Addr = cfg.Redis.Addr()
	storeCfg.Password = cfg.Redis.Password
	storeCfg.DB = cfg.Redis.DB
	storeCfg.DefaultTTL = cfg.CacheTTL()

	store, err := cache.New(storeCfg)
	if err != nil {
		return fmt.Errorf("connect to cache store: %w", err)
	}
	defer store.Close()

	if opts.clearCache {
		n := store.Invalidate(ctx, "")
		fmt.Printf("Cleared %d cached entries\n", n)
	}

	provider := config.Provider(opts.provider)

	gwCfg := gateway.DefaultConfig(cfg.GatewayAPIURL())
	gwCfg.Provider = provider.Provider
	gwCfg.CustomHost = provider.CustomHost

	client, err := gateway.New(gwCfg)
	if err != nil {
		return fmt.Errorf("create gateway client: %w", err)
	}

	rc := cache.NewResponseCache(store, cache.NewKeyBuilder(store.Namespace()))
	h := harness.New(rc, cfg.CacheTTL())

	results, err := runScenarios(ctx, h, client, provider, opts)
	if err != nil {
		return err
	}

	fmt.Println()
	return harness.Render(os.Stdout, results)
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv(), nil
}

func runScenarios(ctx context.Context, h *harness.Harness, client *gateway.Client, provider config.ProviderConfig, opts *options) ([]harness.Result, error) {
	var results []harness.Result

	if opts.scenario == "baseline" || opts.scenario == "all" {
		descs := make([]cache.RequestDescriptor, opts.requests)
		for i := range descs {
			descs[i] = descriptor(provider, fmt.Sprintf("In one word, name the %d-th planet from the sun.", i+1))
		}

		result, err := h.Baseline(ctx, "baseline (uncached)", descs, client.ComputeFor)
		if err != nil {
			return nil, fmt.Errorf("baseline scenario: %w", err)
		}
		results = append(results, result)
	}

	if opts.scenario == "repeat" || opts.scenario == "all" {
		desc := descriptor(provider, "In one word, what is the capital of France?")

		result, err := h.RepeatIdentical(ctx, "repeat identical", desc, opts.requests, client.ComputeFor(desc))
		if err != nil {
			return nil, fmt.Errorf("repeat scenario: %w", err)
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("unknown scenario %q (want baseline, repeat or all)", opts.scenario)
	}

	return results, nil
}

func descriptor(provider config.ProviderConfig, prompt string) cache.RequestDescriptor {
	return cache.RequestDescriptor{
		Provider: provider.Provider,
		Model:    provider.Model,
		Messages: []cache.Message{
			{Role: "user", Content: prompt},
		},
		Params: map[string]any{
			"max_tokens":  50,
			"temperature": 0.0,
		},
	}
}
