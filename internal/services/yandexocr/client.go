// Package yandexocr wraps the Yandex Vision OCR text recognition endpoint.
package yandexocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultURL     = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"
	defaultModel   = "page"
	defaultTimeout = 15 * time.Second
)

// Config captures the recognition endpoint settings.
type Config struct {
	APIKey         string
	FolderID       string
	URL            string
	Model          string
	LanguageCodes  []string
	DataLogging    bool
	TimeoutSeconds int
}

// Client posts images to the recognition endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an OCR client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.FolderID = strings.TrimSpace(cfg.FolderID)
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if len(cfg.LanguageCodes) == 0 {
		cfg.LanguageCodes = []string{"ru", "en"}
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// StatusError reports a non-2xx recognition response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("ocr recognize: http %d: %s", e.StatusCode, body)
}

// ErrNoText indicates a 2xx response without a result object.
var ErrNoText = errors.New("ocr recognize: response has no result")

type recognizeRequest struct {
	MimeType      string   `json:"mimeType,omitempty"`
	LanguageCodes []string `json:"languageCodes"`
	Model         string   `json:"model"`
	Content       string   `json:"content"`
}

type recognizeResponse struct {
	Result *struct {
		TextAnnotation *struct {
			FullText *string `json:"fullText"`
		} `json:"textAnnotation"`
	} `json:"result"`
}

// Recognize returns the full text found in image. An image without text yields "".
func (c *Client) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("ocr recognize: image required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("ocr recognize: api key required")
	}
	if c.cfg.FolderID == "" {
		return "", errors.New("ocr recognize: folder id required")
	}

	payload := recognizeRequest{
		MimeType:      contentType(mimeType),
		LanguageCodes: c.cfg.LanguageCodes,
		Model:         c.cfg.Model,
		Content:       base64.StdEncoding.EncodeToString(image),
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ocr recognize: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("ocr recognize: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+c.cfg.APIKey)
	req.Header.Set("x-folder-id", c.cfg.FolderID)
	req.Header.Set("x-data-logging-enabled", strconv.FormatBool(c.cfg.DataLogging))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr recognize: http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ocr recognize: read body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ocr recognize: decode response: %w", err)
	}
	if parsed.Result == nil {
		return "", ErrNoText
	}
	// Empty fields are omitted from the response, so an image without text
	// may carry no annotation or no fullText at all.
	annotation := parsed.Result.TextAnnotation
	if annotation == nil || annotation.FullText == nil {
		return "", nil
	}
	return *annotation.FullText, nil
}

// contentType maps a MIME type to the short form the endpoint expects.
func contentType(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return "PNG"
	case "image/jpeg", "image/jpg":
		return "JPEG"
	case "application/pdf":
		return "PDF"
	default:
		return ""
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.FolderID != ""
}

// Endpoint returns the recognition URL in use.
func (c *Client) Endpoint() string {
	return c.cfg.URL
}
