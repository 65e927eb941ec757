package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini wraps the Google Gemini API through the genai SDK.
type Gemini struct {
	cfg    Config
	opts   options
	client *genai.Client
}

// NewGemini constructs a Gemini client. BaseURL, when set, overrides the API endpoint.
func NewGemini(ctx context.Context, cfg Config, opts ...Option) (*Gemini, error) {
	cfg = cfg.normalized()
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	resolved := resolveOptions(cfg, opts)
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: resolved.httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{cfg: cfg, opts: resolved, client: client}, nil
}

// Name identifies the provider.
func (g *Gemini) Name() string { return "gemini" }

// Complete sends prompt as a single user turn and returns the response text.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("gemini complete: prompt required")
	}
	return g.generate(ctx, "gemini complete", prompt, g.generationConfig(g.cfg.MaxTokens))
}

// HealthCheck issues a tiny generation to verify the API key and model.
func (g *Gemini) HealthCheck(ctx context.Context) error {
	_, err := g.generate(ctx, "gemini health", healthPrompt, g.generationConfig(0))
	return err
}

func (g *Gemini) generationConfig(maxTokens int) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(g.cfg.Temperature)),
	}
	if g.cfg.TopP > 0 {
		cfg.TopP = genai.Ptr(float32(g.cfg.TopP))
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	return cfg
}

func (g *Gemini) generate(ctx context.Context, op, prompt string, genCfg *genai.GenerateContentConfig) (string, error) {
	return g.opts.withRetry(ctx, op, func() (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), genCfg)
		if err != nil {
			var apiErr genai.APIError
			if errors.As(err, &apiErr) {
				return "", &httpStatusError{Op: op, StatusCode: apiErr.Code, Body: apiErr.Message}
			}
			return "", fmt.Errorf("%s: %w", op, err)
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			var finish string
			if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
				finish = string(resp.Candidates[0].FinishReason)
			}
			return "", &emptyContentError{Op: op, FinishReason: finish, Snippet: "<empty>"}
		}
		return text, nil
	})
}
