package game

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sanitizeInput folds every kind of whitespace to a plain space and drops
// control, format and unprintable runes.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\r':
			return -1
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		case unicode.In(r, unicode.Zl, unicode.Zp), !unicode.IsPrint(r):
			return -1
		default:
			return r
		}
	}, s)
}

// runePrefix returns the length of the longest prefix of b that does not end
// inside a multi-byte UTF-8 sequence. Transports use it to split oversized
// input into fragments without tearing a character apart.
func runePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
