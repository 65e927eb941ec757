package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	defaultYandexGPTURL   = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"
	defaultYandexGPTModel = "yandexgpt/latest"
)

// YandexGPT wraps the Yandex Foundation Models completion API.
type YandexGPT struct {
	cfg  Config
	opts options
}

// NewYandexGPT constructs a Yandex Foundation Models client.
func NewYandexGPT(cfg Config, opts ...Option) *YandexGPT {
	cfg = cfg.normalized()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultYandexGPTURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultYandexGPTModel
	}
	return &YandexGPT{cfg: cfg, opts: resolveOptions(cfg, opts)}
}

// Name identifies the provider.
func (y *YandexGPT) Name() string { return "yandexgpt" }

// ModelURI returns the gpt:// URI addressed by requests.
func (y *YandexGPT) ModelURI() string {
	if strings.HasPrefix(y.cfg.Model, "gpt://") {
		return y.cfg.Model
	}
	return fmt.Sprintf("gpt://%s/%s", y.cfg.FolderID, y.cfg.Model)
}

// Complete sends prompt as the system message and returns the first alternative.
func (y *YandexGPT) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("yandexgpt complete: prompt required")
	}
	return y.complete(ctx, "yandexgpt complete", prompt, y.cfg.MaxTokens)
}

// HealthCheck issues a tiny completion to verify the API key and folder.
func (y *YandexGPT) HealthCheck(ctx context.Context) error {
	_, err := y.complete(ctx, "yandexgpt health", healthPrompt, 5)
	return err
}

type yandexCompletionRequest struct {
	ModelURI          string                  `json:"modelUri"`
	CompletionOptions yandexCompletionOptions `json:"completionOptions"`
	Messages          []yandexMessage         `json:"messages"`
}

type yandexCompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens,string"`
}

type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type yandexCompletionResponse struct {
	Result struct {
		Alternatives []struct {
			Message yandexMessage `json:"message"`
			Status  string        `json:"status"`
		} `json:"alternatives"`
	} `json:"result"`
}

func (y *YandexGPT) complete(ctx context.Context, op, prompt string, maxTokens int) (string, error) {
	if y.cfg.APIKey == "" {
		return "", fmt.Errorf("%s: api key required", op)
	}
	if y.cfg.FolderID == "" && !strings.HasPrefix(y.cfg.Model, "gpt://") {
		return "", fmt.Errorf("%s: folder id required", op)
	}
	payload := yandexCompletionRequest{
		ModelURI: y.ModelURI(),
		CompletionOptions: yandexCompletionOptions{
			Stream:      false,
			Temperature: y.cfg.Temperature,
			MaxTokens:   maxTokens,
		},
		Messages: []yandexMessage{{Role: "system", Text: prompt}},
	}
	headers := map[string]string{"Authorization": "Api-Key " + y.cfg.APIKey}
	if y.cfg.FolderID != "" {
		headers["x-folder-id"] = y.cfg.FolderID
	}
	return y.opts.withRetry(ctx, op, func() (string, error) {
		body, err := postJSON(ctx, y.opts.httpClient, op, y.cfg.BaseURL, headers, payload)
		if err != nil {
			return "", err
		}
		var completion yandexCompletionResponse
		if err := json.Unmarshal(body, &completion); err != nil {
			return "", fmt.Errorf("%s: decode response: %w", op, err)
		}
		if len(completion.Result.Alternatives) == 0 {
			return "", fmt.Errorf("%s: empty alternatives", op)
		}
		alt := completion.Result.Alternatives[0]
		text := strings.TrimSpace(alt.Message.Text)
		if text == "" {
			return "", &emptyContentError{
				Op:           op,
				FinishReason: alt.Status,
				Snippet:      summarizePayloadSnippet(string(body)),
			}
		}
		return text, nil
	})
}
