package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// Client wraps an OpenAI-compatible chat completion API.
type Client struct {
	cfg  Config
	opts options
}

// NewClient constructs an OpenAI-compatible client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg = cfg.normalized()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIURL
	}
	return &Client{cfg: cfg, opts: resolveOptions(cfg, opts)}
}

// Name identifies the provider.
func (c *Client) Name() string { return "openai" }

// Complete sends prompt as a single user message and returns the answer text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("openai complete: prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("openai complete: api key required")
	}
	return c.completionWithRetry(ctx, c.request(prompt), "openai complete")
}

// CompleteWithImage sends prompt together with an inline image and returns the answer text.
func (c *Client) CompleteWithImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("openai vision: prompt required")
	}
	if len(image) == 0 {
		return "", errors.New("openai vision: image required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("openai vision: api key required")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	payload := c.request("")
	payload.Messages = []chatMessage{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image)),
			}},
		},
	}}
	return c.completionWithRetry(ctx, payload, "openai vision")
}

// HealthCheck issues a tiny completion to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("openai health: api key required")
	}
	payload := c.request(healthPrompt)
	_, err := c.completionWithRetry(ctx, payload, "openai health")
	return err
}

func (c *Client) request(prompt string) chatCompletionRequest {
	return chatCompletionRequest{
		Model:            c.cfg.Model,
		Messages:         []chatMessage{{Role: "user", Content: prompt}},
		Temperature:      c.cfg.Temperature,
		MaxTokens:        c.cfg.MaxTokens,
		TopP:             c.cfg.TopP,
		FrequencyPenalty: c.cfg.FrequencyPenalty,
		PresencePenalty:  c.cfg.PresencePenalty,
	}
}

type chatCompletionRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

// chatMessage content is a string for text prompts and []contentPart for vision.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
		// Some providers return the streaming schema even when stream=false.
		Delta chatCompletionMessage `json:"delta"`
		// Legacy completion-style responses.
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatCompletionMessage struct {
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls"`
	Refusal   string     `json:"refusal"`
}

type toolCall struct {
	Function struct {
		Arguments string `json:"arguments"`
	} `json:"function"`
}

func (c *Client) completionWithRetry(ctx context.Context, payload chatCompletionRequest, op string) (string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "")
	if err != nil {
		return "", fmt.Errorf("%s: build url: %w", op, err)
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	return c.opts.withRetry(ctx, op, func() (string, error) {
		body, err := postJSON(ctx, c.opts.httpClient, op, endpoint, headers, payload)
		if err != nil {
			return "", err
		}
		var completion chatCompletionResponse
		if err := json.Unmarshal(body, &completion); err != nil {
			return "", fmt.Errorf("%s: decode response: %w", op, err)
		}
		if completion.Error != nil {
			return "", fmt.Errorf("%s: api error: %s", op, strings.TrimSpace(completion.Error.Message))
		}
		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("%s: empty choices", op)
		}
		content, finishReason, refusal := extractCompletion(completion)
		if content == "" {
			return "", &emptyContentError{
				Op:           op,
				FinishReason: finishReason,
				Refusal:      refusal,
				Snippet:      summarizePayloadSnippet(string(body)),
			}
		}
		return content, nil
	})
}

func extractCompletion(completion chatCompletionResponse) (content, finishReason, refusal string) {
	for _, choice := range completion.Choices {
		if finishReason == "" {
			finishReason = strings.TrimSpace(choice.FinishReason)
		}
		if refusal == "" {
			refusal = firstNonEmpty(choice.Message.Refusal, choice.Delta.Refusal)
		}
		if text := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); text != "" {
			return text, finishReason, refusal
		}
		if args := firstNonEmpty(toolCallArguments(choice.Message.ToolCalls), toolCallArguments(choice.Delta.ToolCalls)); args != "" {
			return args, finishReason, refusal
		}
	}
	return "", finishReason, refusal
}

func toolCallArguments(calls []toolCall) string {
	for _, call := range calls {
		if args := strings.TrimSpace(call.Function.Arguments); args != "" {
			return args
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
