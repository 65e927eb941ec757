package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestYandexGPTComplete(t *testing.T) {
	var got yandexCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Api-Key yc-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("x-folder-id") != "b1gfolder" {
			t.Errorf("unexpected folder header %q", r.Header.Get("x-folder-id"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":{"alternatives":[{"message":{"role":"assistant","text":"<chat>"},"status":"ALTERNATIVE_STATUS_FINAL"}],"modelVersion":"23.10.2024"}}`))
	}))
	defer server.Close()

	client := NewYandexGPT(Config{APIKey: "yc-key", FolderID: "b1gfolder", BaseURL: server.URL, MaxTokens: 100})
	answer, err := client.Complete(context.Background(), "classify")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if answer != "<chat>" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if got.ModelURI != "gpt://b1gfolder/yandexgpt/latest" {
		t.Fatalf("unexpected model uri %q", got.ModelURI)
	}
	if got.CompletionOptions.Stream || got.CompletionOptions.MaxTokens != 100 {
		t.Fatalf("unexpected completion options %+v", got.CompletionOptions)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "system" || got.Messages[0].Text != "classify" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestYandexGPTEmptyAlternatives(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"alternatives":[]}}`))
	}))
	defer server.Close()

	client := NewYandexGPT(Config{APIKey: "k", FolderID: "f", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), "classify"); err == nil {
		t.Fatal("expected empty alternatives to fail")
	}
}

func TestYandexGPTRequiresFolder(t *testing.T) {
	client := NewYandexGPT(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Complete(context.Background(), "classify"); err == nil {
		t.Fatal("expected missing folder to fail")
	}
	full := NewYandexGPT(Config{APIKey: "k", Model: "gpt://other/yandexgpt-lite/latest"})
	if full.ModelURI() != "gpt://other/yandexgpt-lite/latest" {
		t.Fatalf("expected full model uri to pass through, got %q", full.ModelURI())
	}
}
