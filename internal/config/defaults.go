package config

const (
	defaultConfigPath            = "~/.config/chatshot/config.toml"
	defaultStateDir              = "~/.local/share/chatshot"
	defaultLogDir                = "~/.local/share/chatshot/logs"
	defaultPromptsFile           = "~/.config/chatshot/prompts.yaml"
	defaultServerBind            = "127.0.0.1:8501"
	defaultMaxUploadMB           = 10
	defaultRequestTimeoutSeconds = 90
	defaultOCRURL                = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"
	defaultOCRModel              = "page"
	defaultOCRTimeoutSeconds     = 15
	defaultLLMProvider           = ProviderOpenAI
	defaultOpenAIBaseURL         = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel           = "gpt-3.5-turbo-0125"
	defaultYandexGPTBaseURL      = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"
	defaultYandexGPTModel        = "yandexgpt/latest"
	defaultGeminiModel           = "gemini-2.5-flash"
	defaultLLMMaxTokens          = 50
	defaultLLMTopP               = 1
	defaultLLMTimeoutSeconds     = 60
	defaultLLMRetryAttempts      = 1
	defaultClassifierMode        = ModeOCR
	defaultChatMarker            = "<chat>"
	defaultPromptKey             = "chat_classification_prompt"
	defaultVisionPromptKey       = "chat_vision_prompt"
	defaultVisionSize            = 512
	defaultCacheFile             = "ocr_cache.db"
	defaultCacheTTLHours         = 24 * 7
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderYandexGPT = "yandexgpt"
	ProviderGemini    = "gemini"
)

// Classifier modes.
const (
	ModeOCR    = "ocr"
	ModeVision = "vision"
)

var defaultOCRLanguages = []string{"ru", "en"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
			PromptsFile: defaultPromptsFile,
		},
		Server: Server{
			Bind:                  defaultServerBind,
			MaxUploadMB:           defaultMaxUploadMB,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		OCR: OCR{
			URL:            defaultOCRURL,
			Model:          defaultOCRModel,
			LanguageCodes:  append([]string(nil), defaultOCRLanguages...),
			DataLogging:    true,
			TimeoutSeconds: defaultOCRTimeoutSeconds,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			MaxTokens:      defaultLLMMaxTokens,
			TopP:           defaultLLMTopP,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Classifier: Classifier{
			Mode:            defaultClassifierMode,
			ChatMarker:      defaultChatMarker,
			PromptKey:       defaultPromptKey,
			VisionPromptKey: defaultVisionPromptKey,
			VisionWidth:     defaultVisionSize,
			VisionHeight:    defaultVisionSize,
		},
		Cache: Cache{
			TTLHours: defaultCacheTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
