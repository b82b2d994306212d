// Package format turns contributor records into display rows and provides
// the text helpers used to lay those rows out in a terminal.
package format

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of a string in terminal columns,
// accounting for wide characters and ignoring ANSI escape sequences.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// TruncateToWidth truncates plain text to fit within maxWidth display columns.
// If truncation is needed, an ellipsis is added.
// Returns the truncated string and its visible width.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	if maxWidth <= 0 {
		return "", 0
	}
	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s, width
	}
	if maxWidth == 1 {
		// no room for content and an ellipsis
		out := runewidth.Truncate(s, 1, "")
		return out, runewidth.StringWidth(out)
	}
	out := runewidth.Truncate(s, maxWidth, "…")
	return out, runewidth.StringWidth(out)
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}
