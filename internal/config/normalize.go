package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatshot/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeOCR()
	c.normalizeLLM()
	c.normalizeClassifier()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if value, ok := os.LookupEnv("CHATSHOT_PROMPTS_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.PromptsFile = value
	}
	if strings.TrimSpace(c.Paths.PromptsFile) == "" {
		c.Paths.PromptsFile = defaultPromptsFile
	}
	if c.Paths.PromptsFile, err = expandPath(strings.TrimSpace(c.Paths.PromptsFile)); err != nil {
		return fmt.Errorf("paths.prompts_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("CHATSHOT_API_TOKEN"); ok {
			c.Server.APIToken = strings.TrimSpace(value)
		}
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = defaultMaxUploadMB
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeOCR() {
	c.OCR.APIKey = strings.TrimSpace(c.OCR.APIKey)
	if c.OCR.APIKey == "" {
		c.OCR.APIKey = lookupEnv("YANDEX_OCR_API_KEY")
	}
	c.OCR.FolderID = strings.TrimSpace(c.OCR.FolderID)
	if c.OCR.FolderID == "" {
		c.OCR.FolderID = lookupEnv("CATALOG_ID")
	}
	c.OCR.URL = strings.TrimSpace(c.OCR.URL)
	if value := lookupEnv("YANDEX_OCR_URL"); value != "" && (c.OCR.URL == "" || c.OCR.URL == defaultOCRURL) {
		c.OCR.URL = value
	}
	if c.OCR.URL == "" {
		c.OCR.URL = defaultOCRURL
	}
	c.OCR.Model = strings.TrimSpace(c.OCR.Model)
	if c.OCR.Model == "" {
		c.OCR.Model = defaultOCRModel
	}
	c.OCR.LanguageCodes = normalizeLanguages(c.OCR.LanguageCodes)
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = defaultOCRTimeoutSeconds
	}
}

func normalizeLanguages(values []string) []string {
	langs := language.NormalizeList(values)
	if len(langs) == 0 {
		langs = append(langs, defaultOCRLanguages...)
	}
	return langs
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.FolderID = strings.TrimSpace(c.LLM.FolderID)

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = lookupEnv("OPENAI_API_KEY")
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = lookupEnv("GPT_URL")
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultOpenAIBaseURL
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultOpenAIModel
		}
	case ProviderYandexGPT:
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = lookupEnv("YANDEX_API_KEY", "YANDEX_OCR_API_KEY")
		}
		if c.LLM.FolderID == "" {
			c.LLM.FolderID = c.OCR.FolderID
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultYandexGPTBaseURL
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultYandexGPTModel
		}
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = lookupEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultGeminiModel
		}
	}

	if c.LLM.Temperature < 0 {
		c.LLM.Temperature = 0
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.TopP <= 0 || c.LLM.TopP > 1 {
		c.LLM.TopP = defaultLLMTopP
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
}

func (c *Config) normalizeClassifier() {
	c.Classifier.Mode = strings.ToLower(strings.TrimSpace(c.Classifier.Mode))
	if c.Classifier.Mode == "" {
		c.Classifier.Mode = defaultClassifierMode
	}
	// The marker is matched verbatim, so only empty values fall back.
	if strings.TrimSpace(c.Classifier.ChatMarker) == "" {
		c.Classifier.ChatMarker = defaultChatMarker
	}
	c.Classifier.PromptKey = strings.TrimSpace(c.Classifier.PromptKey)
	if c.Classifier.PromptKey == "" {
		c.Classifier.PromptKey = defaultPromptKey
	}
	c.Classifier.VisionPromptKey = strings.TrimSpace(c.Classifier.VisionPromptKey)
	if c.Classifier.VisionPromptKey == "" {
		c.Classifier.VisionPromptKey = defaultVisionPromptKey
	}
	if c.Classifier.VisionWidth <= 0 {
		c.Classifier.VisionWidth = defaultVisionSize
	}
	if c.Classifier.VisionHeight <= 0 {
		c.Classifier.VisionHeight = defaultVisionSize
	}
}

func (c *Config) normalizeCache() error {
	var err error
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = filepath.Join(c.Paths.StateDir, defaultCacheFile)
	}
	if c.Cache.Path, err = expandPath(strings.TrimSpace(c.Cache.Path)); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if c.Cache.TTLHours < 0 {
		c.Cache.TTLHours = 0
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func lookupEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
