package textutil

import "strings"

// WordCount returns the number of whitespace-separated tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// FirstLine returns the first non-empty line of text, trimmed, with any
// leading markdown heading markers removed.
func FirstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return strings.TrimSpace(strings.TrimLeft(line, "# "))
	}
	return ""
}

// Truncate shortens text to at most limit runes, appending an ellipsis when
// truncation occurred.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// SectionHeadings extracts markdown-style heading lines from text, in order.
// These serve as natural section boundaries for downstream prompts.
func SectionHeadings(text string) []string {
	var headings []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		heading := strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		if heading != "" {
			headings = append(headings, heading)
		}
	}
	return headings
}
