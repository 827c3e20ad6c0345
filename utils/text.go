package utils

import (
	"regexp"
	"strings"
)

var (
	lineBreakPattern = regexp.MustCompile(`\r\n|\r`)
	spaceRunPattern  = regexp.MustCompile(`[ \t\f]+`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted document text: strips NUL and replacement
// characters, normalizes all line-break variants to \n, collapses runs of
// spaces/tabs to a single space and 3+ consecutive newlines to one blank
// line, then trims.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.NewReplacer("\x00", "", "�", "", "\x1b", "").Replace(text)
	text = lineBreakPattern.ReplaceAllString(text, "\n")
	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// TruncateRunes cuts text to at most n runes, appending "..." when
// something was cut. Safe on multi-byte Vietnamese text.
func TruncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
