package prompt

import (
	"fmt"
	"strings"
)

type segment struct {
	text        string
	placeholder bool
}

// Template is a parsed prompt with {name} placeholders.
type Template struct {
	segments []segment
}

// Compile parses text. "{{" and "}}" are literal braces; any other brace must
// enclose a placeholder name made of letters, digits and underscores.
func Compile(text string) (*Template, error) {
	var (
		segments []segment
		literal  strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{text: literal.String()})
			literal.Reset()
		}
	}
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch ch {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d", ErrTemplate, i)
			}
			name := text[i+1 : i+1+end]
			if !validName(name) {
				return nil, fmt.Errorf("%w: bad placeholder %q at offset %d", ErrTemplate, name, i)
			}
			flush()
			segments = append(segments, segment{text: name, placeholder: true})
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: single '}' at offset %d", ErrTemplate, i)
		default:
			literal.WriteByte(ch)
		}
	}
	flush()
	return &Template{segments: segments}, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// Placeholders lists the distinct placeholder names in order of appearance.
func (t *Template) Placeholders() []string {
	var names []string
	seen := map[string]struct{}{}
	for _, seg := range t.segments {
		if !seg.placeholder {
			continue
		}
		if _, ok := seen[seg.text]; ok {
			continue
		}
		seen[seg.text] = struct{}{}
		names = append(names, seg.text)
	}
	return names
}

// Render substitutes vars into the template. Every placeholder must have a value.
func (t *Template) Render(vars map[string]string) (string, error) {
	var out strings.Builder
	for _, seg := range t.segments {
		if !seg.placeholder {
			out.WriteString(seg.text)
			continue
		}
		value, ok := vars[seg.text]
		if !ok {
			return "", fmt.Errorf("%w: no value for {%s}", ErrTemplate, seg.text)
		}
		out.WriteString(value)
	}
	return out.String(), nil
}
