package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
	PromptsFile string `toml:"prompts_file"`
}

// Server contains configuration for the HTTP classification API.
type Server struct {
	Bind                  string `toml:"bind"`
	APIToken              string `toml:"api_token"`
	MaxUploadMB           int    `toml:"max_upload_mb"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// OCR contains configuration for the Yandex Vision OCR endpoint.
type OCR struct {
	APIKey         string   `toml:"api_key"`
	FolderID       string   `toml:"folder_id"`
	URL            string   `toml:"url"`
	Model          string   `toml:"model"`
	LanguageCodes  []string `toml:"language_codes"`
	DataLogging    bool     `toml:"data_logging"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// LLM contains configuration for the completion provider.
type LLM struct {
	// Provider selects the backend: "openai", "yandexgpt" or "gemini".
	Provider         string  `toml:"provider"`
	APIKey           string  `toml:"api_key"`
	BaseURL          string  `toml:"base_url"`
	Model            string  `toml:"model"`
	FolderID         string  `toml:"folder_id"` // yandexgpt only
	Temperature      float64 `toml:"temperature"`
	MaxTokens        int     `toml:"max_tokens"`
	TopP             float64 `toml:"top_p"`
	FrequencyPenalty float64 `toml:"frequency_penalty"`
	PresencePenalty  float64 `toml:"presence_penalty"`
	TimeoutSeconds   int     `toml:"timeout_seconds"`
	RetryAttempts    int     `toml:"retry_attempts"`
}

// Classifier contains configuration for the classification pipeline.
type Classifier struct {
	// Mode is "ocr" (OCR text -> LLM) or "vision" (image -> vision LLM).
	Mode            string `toml:"mode"`
	ChatMarker      string `toml:"chat_marker"`
	PromptKey       string `toml:"prompt_key"`
	VisionPromptKey string `toml:"vision_prompt_key"`
	VisionWidth     int    `toml:"vision_width"`
	VisionHeight    int    `toml:"vision_height"`
}

// Cache contains configuration for the optional OCR text cache.
type Cache struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for chatshot.
//
// Configuration sections by subsystem:
//   - Paths: state/log directories and the prompt template file
//   - Server: HTTP API bind address, auth token, upload limits
//   - OCR: Yandex Vision OCR credentials and request shape
//   - LLM: completion provider selection and sampling options
//   - Classifier: pipeline mode, label marker, prompt keys
//   - Cache: optional SQLite OCR text cache
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Server     Server     `toml:"server"`
	OCR        OCR        `toml:"ocr"`
	LLM        LLM        `toml:"llm"`
	Classifier Classifier `toml:"classifier"`
	Cache      Cache      `toml:"cache"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := LoadUnvalidated(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// LoadUnvalidated parses and normalizes configuration without enforcing required
// credentials. Status reporting uses it to describe partially configured setups.
func LoadUnvalidated(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chatshot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Cache.Path), 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	return nil
}

// LockPath returns the lock file guarding a single API server per state directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "chatshot-serve.lock")
}

// LogFilePath returns the log file written alongside console output.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "chatshot.log")
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved completion provider settings.
type LLMConfig struct {
	Provider         string
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
	RetryAttempts    int
}

// GetLLM returns the completion provider settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:         c.LLM.Provider,
		APIKey:           strings.TrimSpace(c.LLM.APIKey),
		BaseURL:          strings.TrimSpace(c.LLM.BaseURL),
		Model:            strings.TrimSpace(c.LLM.Model),
		FolderID:         strings.TrimSpace(c.LLM.FolderID),
		Temperature:      c.LLM.Temperature,
		MaxTokens:        c.LLM.MaxTokens,
		TopP:             c.LLM.TopP,
		FrequencyPenalty: c.LLM.FrequencyPenalty,
		PresencePenalty:  c.LLM.PresencePenalty,
		TimeoutSeconds:   c.LLM.TimeoutSeconds,
		RetryAttempts:    c.LLM.RetryAttempts,
	}
}
