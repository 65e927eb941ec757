package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"chatshot/internal/api"
)

func TestRenderFieldsWrapsLongValues(t *testing.T) {
	long := strings.Repeat("сообщение ", 40)
	out := renderFields([][2]string{{"Verdict", "CHAT"}, {"Text", long}})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 8 {
		t.Fatalf("expected wrapped output, got %d lines:\n%s", len(lines), out)
	}
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > valueWidth+20 {
			t.Fatalf("line too wide (%d runes): %q", n, line)
		}
	}
	requireContains(t, out, "Verdict")
	requireContains(t, out, "CHAT")
}

func TestRenderChecks(t *testing.T) {
	out := renderChecks([]api.CheckStatus{
		{Name: "Prompt file", Passed: true, Detail: "prompts.yaml"},
		{Name: "LLM", Passed: false, Detail: "connection refused"},
	}, false)

	requireContains(t, out, "Check")
	requireContains(t, out, "Prompt file")
	requireContains(t, out, "OK")
	requireContains(t, out, "FAIL")
	requireContains(t, out, "connection refused")
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI codes without color:\n%s", out)
	}
}
