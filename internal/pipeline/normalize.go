// internal/pipeline/normalize.go
package pipeline

import (
	"strings"
	"unicode"
)

// SplitLines splits raw text on "\n", trims every line and drops the ones
// left empty. Order is preserved.
func SplitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		line := strings.TrimFunc(part, isTrimmable)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// isTrimmable matches Unicode space separators, ASCII whitespace, the line and
// paragraph separators and U+FEFF. U+0085 is deliberately kept.
func isTrimmable(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
