package config

import "sort"

// DefaultProvider is the provider used when none is requested.
const DefaultProvider = "ollama"

// ProviderConfig describes one upstream provider reachable through the
// gateway.
type ProviderConfig struct {
	// Name is the catalog name used on the command line
	Name string `yaml:"name"`

	// Provider is the slug the gateway routes on
	Provider string `yaml:"provider"`

	// Model is the model identifier sent with each request
	Model string `yaml:"model"`

	// CustomHost is the upstream host override forwarded to the gateway
	CustomHost string `yaml:"custom_host"`
}

// providerCatalog is the built-in provider set. The llama-fp8 deployment
// is vLLM, which speaks the OpenAI protocol, hence the openai slug.
var providerCatalog = map[string]ProviderConfig{
	"ollama": {
		Name:       "ollama",
		Provider:   "ollama",
		Model:      "llama3",
		CustomHost: "http://ollama:11434",
	},
	"llama-fp8": {
		Name:       "llama-fp8",
		Provider:   "openai",
		Model:      "openai/llama-fp8",
		CustomHost: "http://llama-fp8-predictor:8080",
	},
}

// Provider returns the named provider configuration, falling back to the
// default provider for unknown names.
func Provider(name string) ProviderConfig {
	if p, ok := providerCatalog[name]; ok {
		return p
	}
	return providerCatalog[DefaultProvider]
}

// Providers returns the catalog sorted by name.
func Providers() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(providerCatalog))
	for _, p := range providerCatalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ProviderNames returns the sorted catalog names, for flag help text.
func ProviderNames() []string {
	names := make([]string, 0, len(providerCatalog))
	for name := range providerCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
