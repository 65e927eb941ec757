package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// FakeOCR imitates the Yandex Vision recognizeText endpoint.
type FakeOCR struct {
	*httptest.Server

	mu    sync.Mutex
	text  string
	calls atomic.Int32
}

// NewFakeOCR starts a recognizer that answers every request with text.
func NewFakeOCR(t testing.TB, text string) *FakeOCR {
	t.Helper()

	f := &FakeOCR{text: text}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		text := f.text
		f.mu.Unlock()
		// The real service drops empty fields, fullText included.
		annotation := map[string]any{"width": "4", "height": "4", "blocks": []any{}}
		if text != "" {
			annotation["fullText"] = text
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"textAnnotation": annotation},
		})
	}))
	t.Cleanup(f.Close)
	return f
}

// SetText changes the recognized text for later requests.
func (f *FakeOCR) SetText(text string) {
	f.mu.Lock()
	f.text = text
	f.mu.Unlock()
}

// Calls returns the number of requests served.
func (f *FakeOCR) Calls() int { return int(f.calls.Load()) }

// FakeOpenAI imitates an OpenAI-compatible chat completions endpoint.
type FakeOpenAI struct {
	*httptest.Server

	mu         sync.Mutex
	answer     string
	lastPrompt string
	calls      atomic.Int32
}

// NewFakeOpenAI starts a completion endpoint that always returns answer.
func NewFakeOpenAI(t testing.TB, answer string) *FakeOpenAI {
	t.Helper()

	f := &FakeOpenAI{answer: answer}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		var req struct {
			Messages []struct {
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		if len(req.Messages) > 0 {
			var text string
			if json.Unmarshal(req.Messages[0].Content, &text) == nil {
				f.lastPrompt = text
			} else {
				f.lastPrompt = string(req.Messages[0].Content)
			}
		}
		answer := f.answer
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": answer}}},
		})
	}))
	t.Cleanup(f.Close)
	return f
}

// LastPrompt returns the content of the most recent user message.
func (f *FakeOpenAI) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPrompt
}

// Calls returns the number of requests served.
func (f *FakeOpenAI) Calls() int { return int(f.calls.Load()) }
