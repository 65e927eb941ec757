package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func completionHandler(t *testing.T, choice map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"choices": []any{choice}}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func TestClientCompleteSendsOptions(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "<chat>"}}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:      "sk-test",
		BaseURL:     server.URL,
		Model:       "gpt-3.5-turbo-0125",
		MaxTokens:   50,
		TopP:        1,
		Temperature: 0,
	})
	answer, err := client.Complete(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if answer != "<chat>" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if got["model"] != "gpt-3.5-turbo-0125" || got["max_tokens"] != float64(50) || got["top_p"] != float64(1) {
		t.Fatalf("unexpected request body: %v", got)
	}
	for _, key := range []string{"temperature", "frequency_penalty", "presence_penalty"} {
		if value, ok := got[key]; !ok || value != float64(0) {
			t.Fatalf("expected %s=0 in request, got %v", key, got)
		}
	}
	messages, _ := got["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected a single message, got %v", got["messages"])
	}
	msg := messages[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "classify this" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestClientCompleteDeltaContent(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, map[string]any{
		"delta": map[string]any{"content": "<non-chat>"},
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	answer, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if answer != "<non-chat>" {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestClientCompleteLegacyText(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, map[string]any{
		"finish_reason": "stop",
		"text":          " <chat> ",
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	answer, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if answer != "<chat>" {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestClientCompleteToolCallArguments(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, map[string]any{
		"finish_reason": "tool_calls",
		"message": map[string]any{
			"content": "",
			"tool_calls": []any{
				map[string]any{"function": map[string]any{"name": "label", "arguments": `{"label":"<chat>"}`}},
			},
		},
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	answer, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if !strings.Contains(answer, "<chat>") {
		t.Fatalf("expected tool call arguments, got %q", answer)
	}
}

func TestClientCompleteEmptyContentHasSnippet(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, map[string]any{
		"finish_reason": "stop",
		"message":       map[string]any{"content": ""},
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected empty content to fail")
	}
	if !IsEmptyContent(err) {
		t.Fatalf("expected empty content error, got %T", err)
	}
	if !strings.Contains(err.Error(), "response_snippet=") {
		t.Fatalf("expected snippet in error, got %v", err)
	}
}

func TestClientCompleteRequiresKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Model: "demo"})
	if _, err := client.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected missing key to fail")
	}
}

func TestClientSingleShotByDefault(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected 503 to fail")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
	if code, ok := StatusCode(err); !ok || code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 in error, got %v", err)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "<chat>"}}},
		})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	answer, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if answer != "<chat>" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		content := ""
		if calls >= 3 {
			content = "<non-chat>"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"finish_reason": "stop", "message": map[string]any{"content": content}}},
		})
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(5),
	)
	answer, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if answer != "<non-chat>" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"},
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(3),
	)
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
	if calls != 1 {
		t.Fatalf("expected 401 not to be retried, got %d calls", calls)
	}
}

func TestClientCompleteWithImage(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content []struct {
					Type     string `json:"type"`
					Text     string `json:"text"`
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("unexpected messages: %+v", req.Messages)
		} else {
			parts := req.Messages[0].Content
			want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
			if parts[0].Type != "text" || parts[0].Text != "is this a chat?" {
				t.Errorf("unexpected text part: %+v", parts[0])
			}
			if parts[1].Type != "image_url" || parts[1].ImageURL.URL != want {
				t.Errorf("unexpected image part: %+v", parts[1])
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "<chat>"}}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "gpt-4o"})
	answer, err := client.CompleteWithImage(context.Background(), "is this a chat?", "image/png", image)
	if err != nil {
		t.Fatalf("CompleteWithImage returned error: %v", err)
	}
	if answer != "<chat>" {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, map[string]any{
		"message": map[string]any{"content": "OK"},
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}
