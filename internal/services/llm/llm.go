package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chatshot/internal/config"
)

const (
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 1

	healthPrompt = "Reply with the single word OK."
)

// Provider is a completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

// Config captures the runtime settings shared by every provider.
type Config struct {
	APIKey           string
	BaseURL          string
	Model            string
	FolderID         string
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	TimeoutSeconds   int
}

func (c Config) normalized() Config {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Model = strings.TrimSpace(c.Model)
	c.FolderID = strings.TrimSpace(c.FolderID)
	return c
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return defaultHTTPTimeout
}

// New constructs the provider named by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, opts ...Option) (Provider, error) {
	base := Config{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		Model:            cfg.Model,
		FolderID:         cfg.FolderID,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		TopP:             cfg.TopP,
		FrequencyPenalty: cfg.FrequencyPenalty,
		PresencePenalty:  cfg.PresencePenalty,
		TimeoutSeconds:   cfg.TimeoutSeconds,
	}
	if cfg.RetryAttempts > 0 {
		opts = append([]Option{WithRetryMaxAttempts(cfg.RetryAttempts)}, opts...)
	}
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewClient(base, opts...), nil
	case config.ProviderYandexGPT:
		return NewYandexGPT(base, opts...), nil
	case config.ProviderGemini:
		return NewGemini(ctx, base, opts...)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}

// Option customizes a provider.
type Option func(*options)

type options struct {
	httpClient       *http.Client
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

func resolveOptions(cfg Config, opts []Option) options {
	resolved := options{
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(&resolved)
	}
	if resolved.httpClient == nil {
		resolved.httpClient = &http.Client{Timeout: cfg.timeout()}
	}
	return resolved
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the attempt count (defaults to 1).
func WithRetryMaxAttempts(attempts int) Option {
	return func(o *options) {
		o.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(o *options) {
		o.retryBaseDelay = baseDelay
		o.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(o *options) {
		o.sleeper = sleeper
	}
}
