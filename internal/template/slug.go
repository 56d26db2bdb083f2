package template

import "strings"

// Slugify makes s safe to embed in a version by replacing path separators.
func Slugify(s string) string {
	return strings.ReplaceAll(s, "/", "-")
}

// LeftPad pads s on the left with pad until it is at least width runes long.
func LeftPad(s string, width int, pad rune) string {
	n := width - len([]rune(s))
	if n <= 0 {
		return s
	}
	return strings.Repeat(string(pad), n) + s
}
