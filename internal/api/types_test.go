package api

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"chatshot/internal/classifier"
	"chatshot/internal/label"
	"chatshot/internal/preflight"
)

func TestFromResultClassified(t *testing.T) {
	resp := FromResult(classifier.Result{
		RequestID:  "req-1",
		Mode:       "ocr",
		Label:      label.Chat,
		Classified: true,
		Text:       "привет",
		Duration:   1500 * time.Millisecond,
	}, nil)

	if resp.Label != "CHAT" || !resp.IsChat || !resp.Classified {
		t.Fatalf("unexpected verdict: %+v", resp)
	}
	if resp.Message != label.Chat.Message() {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.ProcessingMS != 1500 || resp.ProcessingTime() != 1500*time.Millisecond {
		t.Fatalf("unexpected timing %d", resp.ProcessingMS)
	}
	if resp.TextLength != 6 {
		t.Fatalf("expected rune length 6, got %d", resp.TextLength)
	}
	if resp.Error != "" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestFromResultFailure(t *testing.T) {
	resp := FromResult(classifier.Result{
		RequestID:   "req-2",
		Label:       label.Chat,
		FailedStage: classifier.StageLLM,
	}, errors.New("llm down"))

	if resp.Classified || resp.IsChat || resp.Label != "NOT_CHAT" {
		t.Fatalf("failure must not carry a verdict: %+v", resp)
	}
	if resp.Message != MessageNotClassified || resp.Error != "llm down" {
		t.Fatalf("unexpected failure payload: %+v", resp)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"request_id":"req-2"`, `"classified":false`, `"failed_stage":"llm"`, `"error":"llm down"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("expected %s in %s", key, data)
		}
	}
}

func TestFromPreflight(t *testing.T) {
	status := FromPreflight("ocr", []preflight.Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: false, Detail: "missing"},
	})
	if status.Ready {
		t.Fatal("expected not ready")
	}
	if len(status.Checks) != 2 || status.Checks[1].Detail != "missing" {
		t.Fatalf("unexpected checks %+v", status.Checks)
	}
	if !FromPreflight("ocr", nil).Ready {
		t.Fatal("expected empty check list to be ready")
	}
}
