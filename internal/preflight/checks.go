package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"time"

	"golang.org/x/sys/unix"

	"chatshot/internal/config"
	"chatshot/internal/language"
	"chatshot/internal/ocrcache"
	"chatshot/internal/prompt"
)

// HealthChecker verifies a completion provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckLLM verifies that the provider is reachable and the key is valid.
// It uses a 30-second timeout.
func CheckLLM(ctx context.Context, name string, checker HealthChecker) Result {
	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckPromptFile verifies that the prompts file parses and holds key with a
// {message_text} placeholder.
func CheckPromptFile(path, key string) Result {
	const name = "Prompt templates"
	set, err := prompt.Load(path)
	if err != nil {
		if errors.Is(err, prompt.ErrFileNotFound) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist; run 'chatshot config init')", path)}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	tmpl, err := set.Template(key)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if !slices.Contains(tmpl.Placeholders(), prompt.VarMessageText) {
		return Result{Name: name, Detail: fmt.Sprintf("%s: template %q has no {%s} placeholder", path, key, prompt.VarMessageText)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, key)}
}

// CheckOCRConfig verifies that recognition credentials are present.
func CheckOCRConfig(cfg *config.Config) Result {
	const name = "Yandex OCR"
	switch {
	case cfg.OCR.APIKey == "":
		return Result{Name: name, Detail: "API key missing (YANDEX_OCR_API_KEY)"}
	case cfg.OCR.FolderID == "":
		return Result{Name: name, Detail: "folder id missing (CATALOG_ID)"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("configured (%s; %s)", cfg.OCR.URL, language.DisplayList(cfg.OCR.LanguageCodes))}
}

// CheckCache opens the OCR cache and reports its size.
func CheckCache(ctx context.Context, path string, ttl time.Duration) Result {
	const name = "OCR cache"
	store, err := ocrcache.Open(ctx, path, ttl)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	count, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", path, count)}
}

// summarizeLLMError produces a human-readable summary for health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
