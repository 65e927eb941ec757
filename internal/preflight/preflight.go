package preflight

import (
	"context"
	"time"

	"chatshot/internal/config"
	"chatshot/internal/services/llm"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Options controls which checks RunAll performs.
type Options struct {
	// SkipLLM omits the live completion check.
	SkipLLM bool
}

// RunAll executes the preflight checks for cfg in display order.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckPromptFile(cfg.Paths.PromptsFile, cfg.Classifier.PromptKey),
	}
	if cfg.Classifier.Mode != config.ModeVision {
		results = append(results, CheckOCRConfig(cfg))
	}
	if cfg.Cache.Enabled {
		results = append(results, CheckCache(ctx, cfg.Cache.Path, time.Duration(cfg.Cache.TTLHours)*time.Hour))
	}
	if !opts.SkipLLM {
		results = append(results, CheckLLMFromConfig(ctx, cfg.GetLLM()))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CheckLLMFromConfig builds the configured provider and runs its health check
// with a single attempt.
func CheckLLMFromConfig(ctx context.Context, cfg config.LLMConfig) Result {
	name := "LLM (" + cfg.Provider + ")"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	cfg.RetryAttempts = 1
	provider, err := llm.New(ctx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return CheckLLM(ctx, name, provider)
}
