package markup

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts block text to NFC, collapses runs of spaces and tabs to a
// single space, trims every line and the block as a whole. Line breaks survive;
// CRLF and lone CR become LF. Normalize is idempotent.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.FieldsFunc(line, isHorizontalSpace), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isHorizontalSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\v', '\f', '\u00a0':
		return true
	}
	return false
}
