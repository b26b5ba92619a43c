// Package gateway provides a minimal client for an OpenAI-compatible LLM
// gateway. It is the upstream collaborator of the response cache: callers
// wrap ChatCompletion in a compute callback and hand it to
// cache.ResponseCache. Routing, fallback and load balancing remain the
// gateway's own business; this client only speaks the completion endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/llmgw/llmcache/pkg/cache"
)

// Prometheus metrics for gateway requests.
var (
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llmgw_requests_total",
		Help: "Total gateway requests by status",
	}, []string{"status"})

	gatewayRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "llmgw_request_duration_seconds",
		Help:    "Gateway request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	gatewayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llmgw_errors_total",
		Help: "Total gateway errors by class",
	}, []string{"class"})
)

// Config holds the gateway client configuration.
type Config struct {
	// BaseURL is the gateway API base URL including the version segment
	// (e.g. "https://gateway.example.com/v1")
	BaseURL string

	// Provider is the provider slug forwarded to the gateway
	Provider string

	// CustomHost is the upstream host override forwarded to the gateway
	// (empty to let the gateway pick)
	CustomHost string

	// APIKey authenticates against the gateway (empty for self-hosted
	// gateways that don't check it)
	APIKey string

	// Timeout bounds a single HTTP attempt
	Timeout time.Duration

	// Retry controls backoff for retriable failures
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration for the given base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
		Retry:   DefaultRetryConfig(),
	}
}

// Client calls the gateway's chat completion endpoint.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     zerolog.Logger
}

// New creates a gateway client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:    cfg,
		logger: log.With().Str("component", "gateway-client").Logger(),
	}, nil
}

// ChatCompletion sends desc to the gateway's /chat/completions endpoint
// and returns the raw response payload. Server and network failures are
// retried with backoff; 4xx responses are not. The payload is treated as
// an opaque serializable value, suitable for caching as-is.
func (c *Client) ChatCompletion(ctx context.Context, desc cache.RequestDescriptor) (json.RawMessage, error) {
	body := map[string]any{
		"model":    desc.Model,
		"messages": desc.Messages,
	}
	for k, v := range desc.Params {
		body[k] = v
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	start := time.Now()
	defer func() {
		gatewayRequestDuration.Observe(time.Since(start).Seconds())
	}()

	provider := desc.Provider
	if provider == "" {
		provider = c.cfg.Provider
	}

	var payload json.RawMessage
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, c.logger, c.cfg.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions",
			bytes.NewReader(reqBody))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if provider != "" {
			req.Header.Set("x-provider", provider)
		}
		if c.cfg.CustomHost != "" {
			req.Header.Set("x-custom-host", c.cfg.CustomHost)
		}
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errClass = classify(0, err)
			gatewayErrorsTotal.WithLabelValues(string(errClass)).Inc()
			gatewayRequestsTotal.WithLabelValues("network_error").Inc()
			c.logger.Warn().Err(err).Str("provider", provider).Msg("Gateway request failed")
			return err
		}
		defer resp.Body.Close()

		gatewayRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass = classify(resp.StatusCode, nil)
			gatewayErrorsTotal.WithLabelValues(string(errClass)).Inc()

			msg := resp.Status
			if data, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil && len(data) > 0 {
				msg = string(data)
			}

			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Str("provider", provider).
				Msg("Gateway request error")

			return &GatewayError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    msg,
			}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			errClass = ErrorClassNetwork
			gatewayErrorsTotal.WithLabelValues(string(errClass)).Inc()
			return fmt.Errorf("read response body: %w", err)
		}

		payload = data
		return nil
	}, func() ErrorClass {
		return errClass
	})

	if retryErr != nil {
		return nil, retryErr
	}

	c.logger.Debug().
		Str("provider", provider).
		Str("model", desc.Model).
		Dur("duration", time.Since(start)).
		Msg("Completion request succeeded")

	return payload, nil
}

// ComputeFor builds a cache compute callback bound to one descriptor.
func (c *Client) ComputeFor(desc cache.RequestDescriptor) cache.ComputeFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		return c.ChatCompletion(ctx, desc)
	}
}

// chatCompletion is the subset of the completion payload needed to pull
// out the assistant text.
type chatCompletion struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractContent returns the first choice's message content from a
// completion payload, trimmed of surrounding whitespace.
func ExtractContent(payload json.RawMessage) (string, error) {
	var cc chatCompletion
	if err := json.Unmarshal(payload, &cc); err != nil {
		return "", fmt.Errorf("parse completion payload: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", errors.New("completion payload has no choices")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}
