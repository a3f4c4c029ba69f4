package format

import (
	"strings"

	"github.com/enescakir/emoji"
)

// Emojizer expands :shortcode: sequences using a lookup table keyed by the
// shortcode including its colons, e.g. ":rocket:".
type Emojizer struct {
	table map[string]string
}

// NewEmojizer builds an Emojizer over table. A nil table uses the full
// GitHub-style shortcode set.
func NewEmojizer(table map[string]string) *Emojizer {
	if table == nil {
		table = emoji.Map()
	}
	return &Emojizer{table: table}
}

// Expand replaces every mapped :name: with its glyph. Unmapped shortcodes and
// stray colons are left untouched.
func (e *Emojizer) Expand(s string) string {
	if !strings.Contains(s, ":") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		start := strings.IndexByte(s, ':')
		if start < 0 {
			b.WriteString(s)
			break
		}
		end := strings.IndexByte(s[start+1:], ':')
		if end < 0 {
			b.WriteString(s)
			break
		}
		end += start + 1
		code := s[start : end+1]
		if glyph, ok := e.table[code]; ok && validShortcode(code) {
			b.WriteString(s[:start])
			b.WriteString(glyph)
			s = s[end+1:]
			continue
		}
		// not a shortcode; the closing colon may open the next one
		b.WriteString(s[:end])
		s = s[end:]
	}
	return b.String()
}

func validShortcode(code string) bool {
	name := code[1 : len(code)-1]
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '+':
		default:
			return false
		}
	}
	return true
}
