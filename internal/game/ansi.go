package game

import "strings"

const (
	AnsiReset   = "\x1b[0m"
	AnsiBold    = "\x1b[1m"
	AnsiDim     = "\x1b[2m"
	AnsiItalic  = "\x1b[3m"
	AnsiCyan    = "\x1b[36m"
	AnsiYellow  = "\x1b[33m"
	AnsiGreen   = "\x1b[32m"
	AnsiMagenta = "\x1b[35m"
	AnsiRed     = "\x1b[31m"
)

// Style wraps text with the provided ANSI attributes.
func Style(text string, attrs ...string) string {
	if len(attrs) == 0 {
		return text
	}
	return strings.Join(attrs, "") + text + AnsiReset
}

// HighlightName formats user names consistently.
func HighlightName(name string) string {
	return Style(name, AnsiBold, AnsiCyan)
}

// HighlightItem formats item names.
func HighlightItem(name string) string {
	return Style(name, AnsiYellow)
}

// HighlightExit formats exit names.
func HighlightExit(name string) string {
	return Style(name, AnsiGreen)
}

// Notice formats a system reply such as a wizard prompt.
func Notice(text string) string {
	return Ansi("\r\n" + Style(text, AnsiYellow))
}

// Failure formats an error reply.
func Failure(text string) string {
	return Ansi("\r\n" + Style(text, AnsiRed))
}

// Trim sanitises an input line and strips surrounding whitespace.
func Trim(s string) string {
	return strings.TrimSpace(sanitizeInput(s))
}

// Ansi ensures output strings end with a reset sequence.
func Ansi(c string) string {
	if strings.Contains(c, "\x1b[") && !strings.HasSuffix(c, AnsiReset) {
		return c + AnsiReset
	}
	return c
}

// Prompt renders the input prompt; lobby sessions get a distinct marker.
func Prompt(s *Session) string {
	if s.User == nil || s.User.Room == nil {
		return Ansi(Style("\r\nlobby> ", AnsiBold, AnsiMagenta))
	}
	return Ansi(Style("\r\n> ", AnsiBold, AnsiYellow))
}
