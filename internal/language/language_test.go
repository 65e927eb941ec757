package language

import (
	"strings"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ru", "ru"},
		{"EN", "en"},
		{"rus", "ru"},
		{"eng", "en"},
		{"ger", "de"},
		{"deu", "de"},
		{"cze", "cs"},
		{"Russian", "ru"},
		{"kazakh", "kk"},
		{"*", "*"},
		{"xy", "xy"},
		{"xyz", ""},
		{"", ""},
		{" ", ""},
	}
	for _, tc := range tests {
		if got := ToISO2(tc.input); got != tc.expected {
			t.Errorf("ToISO2(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestSupported(t *testing.T) {
	for _, code := range []string{"ru", "en", "*", "ukr", "Tatar"} {
		if !Supported(code) {
			t.Errorf("expected %q to be supported", code)
		}
	}
	for _, code := range []string{"xy", "", "klingon"} {
		if Supported(code) {
			t.Errorf("expected %q to be unsupported", code)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"ru":  "Russian",
		"eng": "English",
		"*":   "Auto-detect",
		"":    "Unknown",
		"xy":  "XY",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
	if got := DisplayList([]string{"ru", "en"}); got != "Russian, English" {
		t.Errorf("DisplayList = %q", got)
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{" EN ", "english", "", "rus", "Russian", "*", "klingon"})
	if strings.Join(got, ",") != "en,ru,*,klingon" {
		t.Fatalf("unexpected list %v", got)
	}
	if NormalizeList(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}
