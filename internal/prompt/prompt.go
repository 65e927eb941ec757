// Package prompt loads classification prompt templates and renders them.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var samplePrompts string

// VarMessageText is the placeholder filled with OCR text.
const VarMessageText = "message_text"

var (
	// ErrFileNotFound indicates the prompts file does not exist.
	ErrFileNotFound = errors.New("prompt file not found")
	// ErrParse indicates the prompts file is not valid YAML.
	ErrParse = errors.New("prompt file parse failed")
	// ErrMissingKey indicates the requested template key is absent or empty.
	ErrMissingKey = errors.New("prompt key missing")
	// ErrTemplate indicates a malformed template or an unknown placeholder.
	ErrTemplate = errors.New("prompt template invalid")
)

// Set holds the templates read from one prompts file.
type Set struct {
	path      string
	templates map[string]string
}

// Load reads a YAML mapping of template keys to template text.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	set.path = path
	return set, nil
}

// Parse decodes templates from YAML content. Non-string values are ignored.
func Parse(data []byte) (*Set, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	templates := make(map[string]string, len(raw))
	for key, value := range raw {
		if text, ok := value.(string); ok {
			templates[key] = text
		}
	}
	return &Set{templates: templates}, nil
}

// Path returns the file the set was loaded from, if any.
func (s *Set) Path() string { return s.path }

// Keys lists the template keys in sorted order.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for key := range s.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Template returns the parsed template stored under key.
func (s *Set) Template(key string) (*Template, error) {
	text, ok := s.templates[key]
	if !ok || strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return Compile(text)
}

// Vision returns the vision template, falling back to the classification
// template rendered with empty OCR text.
func (s *Set) Vision(visionKey, fallbackKey string) (string, error) {
	if tmpl, err := s.Template(visionKey); err == nil {
		return tmpl.Render(nil)
	} else if !errors.Is(err, ErrMissingKey) {
		return "", err
	}
	tmpl, err := s.Template(fallbackKey)
	if err != nil {
		return "", err
	}
	return tmpl.Render(map[string]string{VarMessageText: ""})
}

// SamplePrompts returns the embedded sample prompts file.
func SamplePrompts() string { return samplePrompts }

// WriteSample writes the embedded prompts file to path unless it already exists.
func WriteSample(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create prompt directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(samplePrompts), 0o644); err != nil {
		return false, fmt.Errorf("write sample prompts: %w", err)
	}
	return true, nil
}

// FileSource reads the prompts file on every lookup so edits apply without a restart.
type FileSource struct {
	Path string
}

// Template loads the file and returns the template stored under key.
func (f FileSource) Template(key string) (*Template, error) {
	set, err := Load(f.Path)
	if err != nil {
		return nil, err
	}
	return set.Template(key)
}

// Vision loads the file and returns the rendered vision prompt.
func (f FileSource) Vision(visionKey, fallbackKey string) (string, error) {
	set, err := Load(f.Path)
	if err != nil {
		return "", err
	}
	return set.Vision(visionKey, fallbackKey)
}
