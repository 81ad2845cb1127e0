package textutil

import "strings"

// Snippet flattens text onto one line and caps it at max runes for log
// output. Newlines and tabs become spaces, space runs collapse, and truncated
// text gains a "..." marker. A max of zero or less returns the empty string.
func Snippet(text string, max int) string {
	if max <= 0 {
		return ""
	}
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= max {
		return flat
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
