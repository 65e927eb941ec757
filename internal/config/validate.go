package config

import (
	"errors"
	"fmt"
	"strings"

	"chatshot/internal/language"
)

// MissingSetting describes a required value that is not configured.
type MissingSetting struct {
	Key    string
	EnvVar string
}

func (m MissingSetting) String() string {
	if m.EnvVar == "" {
		return m.Key
	}
	return fmt.Sprintf("%s (%s)", m.Key, m.EnvVar)
}

// MissingSettingsError lists every required setting that is absent.
type MissingSettingsError struct {
	Missing []MissingSetting
}

func (e *MissingSettingsError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, m.String())
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Sprintf(
		"missing required settings: %s. Set the environment variables or edit %s (create with 'chatshot config init')",
		strings.Join(parts, ", "),
		defaultPath,
	)
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if missing := c.MissingSettings(); len(missing) > 0 {
		return &MissingSettingsError{Missing: missing}
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validatePositive(); err != nil {
		return err
	}
	return nil
}

// MissingSettings reports absent credentials for the configured providers.
func (c *Config) MissingSettings() []MissingSetting {
	var missing []MissingSetting
	if c.Classifier.Mode != ModeVision {
		if c.OCR.APIKey == "" {
			missing = append(missing, MissingSetting{Key: "ocr.api_key", EnvVar: "YANDEX_OCR_API_KEY"})
		}
		if c.OCR.FolderID == "" {
			missing = append(missing, MissingSetting{Key: "ocr.folder_id", EnvVar: "CATALOG_ID"})
		}
		if c.OCR.URL == "" {
			missing = append(missing, MissingSetting{Key: "ocr.url", EnvVar: "YANDEX_OCR_URL"})
		}
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			missing = append(missing, MissingSetting{Key: "llm.api_key", EnvVar: "OPENAI_API_KEY"})
		}
		if c.LLM.BaseURL == "" {
			missing = append(missing, MissingSetting{Key: "llm.base_url", EnvVar: "GPT_URL"})
		}
	case ProviderYandexGPT:
		if c.LLM.APIKey == "" {
			missing = append(missing, MissingSetting{Key: "llm.api_key", EnvVar: "YANDEX_API_KEY"})
		}
		if c.LLM.FolderID == "" {
			missing = append(missing, MissingSetting{Key: "llm.folder_id", EnvVar: "CATALOG_ID"})
		}
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			missing = append(missing, MissingSetting{Key: "llm.api_key", EnvVar: "GEMINI_API_KEY"})
		}
	}
	return missing
}

func (c *Config) validateOCR() error {
	if c.Classifier.Mode == ModeVision {
		return nil
	}
	for _, code := range c.OCR.LanguageCodes {
		if !language.Supported(code) {
			return fmt.Errorf("ocr.language_codes: unsupported language %q", code)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderYandexGPT, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (expected openai, yandexgpt or gemini)", c.LLM.Provider)
	}
	if c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	switch c.Classifier.Mode {
	case ModeOCR:
	case ModeVision:
		if c.LLM.Provider != ProviderOpenAI {
			return fmt.Errorf("classifier.mode %q requires llm.provider %q", ModeVision, ProviderOpenAI)
		}
	default:
		return fmt.Errorf("classifier.mode: unsupported value %q (expected ocr or vision)", c.Classifier.Mode)
	}
	return nil
}

func (c *Config) validatePositive() error {
	return ensurePositiveMap(map[string]int{
		"server.max_upload_mb":           c.Server.MaxUploadMB,
		"server.request_timeout_seconds": c.Server.RequestTimeoutSeconds,
		"ocr.timeout_seconds":            c.OCR.TimeoutSeconds,
		"llm.max_tokens":                 c.LLM.MaxTokens,
		"llm.timeout_seconds":            c.LLM.TimeoutSeconds,
		"classifier.vision_width":        c.Classifier.VisionWidth,
		"classifier.vision_height":       c.Classifier.VisionHeight,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
