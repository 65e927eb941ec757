package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"chatshot/internal/config"
	"chatshot/internal/prompt"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a complete config seeded with unique temp directories per
// test. Directories exist, the sample prompts file is written and every
// credential is set, so the config validates.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.PromptsFile = filepath.Join(base, "prompts.yaml")
	cfgVal.Cache.Path = filepath.Join(base, "state", "ocr_cache.db")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.OCR.APIKey = "ocr-key"
	cfgVal.OCR.FolderID = "folder"
	cfgVal.LLM.APIKey = "sk-test"
	cfgVal.LLM.BaseURL = "http://127.0.0.1:1/v1/chat/completions"
	cfgVal.LLM.Model = "gpt-test"

	for _, dir := range []string{cfgVal.Paths.StateDir, cfgVal.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if _, err := prompt.WriteSample(cfgVal.Paths.PromptsFile); err != nil {
		t.Fatalf("write prompts: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOCRURL points the recognizer at url.
func WithOCRURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OCR.URL = url
	}
}

// WithLLMURL points the openai-compatible completion client at url.
func WithLLMURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithMode selects the classifier mode.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classifier.Mode = mode
	}
}

// WithCache enables the OCR cache inside the temp state directory.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
	}
}

// WithPrompts replaces the prompts file content.
func WithPrompts(content string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.WriteFile(b.cfg.Paths.PromptsFile, []byte(content), 0o644); err != nil {
			b.t.Fatalf("write prompts: %v", err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.PromptsFile)
}

// WriteConfigFile stores cfg as TOML next to its temp directories and returns the path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
