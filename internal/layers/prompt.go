package layers

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a careful editor producing progressively refined " +
	"derivatives of a source text. Work only from the material you are given; " +
	"never invent facts. Respond with the derivative text only, no preamble."

type promptInput struct {
	title       string
	content     string
	sections    []string
	previous    string
	focus       string
	finalFormat string
}

func buildUserPrompt(level Level, in promptInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Refinement level %d of 5: %s.\n%s\n", level.Number, level.Name, level.instruction)

	if in.focus != "" {
		fmt.Fprintf(&sb, "\nFocus lens: emphasize aspects related to %q.\n", in.focus)
	}
	if level.Number == 5 && in.finalFormat != "" {
		fmt.Fprintf(&sb, "\nRequested output format: %s.\n", in.finalFormat)
	}
	if len(in.sections) > 0 {
		fmt.Fprintf(&sb, "\nSection boundaries in the source: %s.\n", strings.Join(in.sections, "; "))
	}

	fmt.Fprintf(&sb, "\n--- SOURCE: %s ---\n%s\n", in.title, in.content)
	if in.previous != "" {
		fmt.Fprintf(&sb, "\n--- PREVIOUS LEVEL (%d) ---\n%s\n", level.Number-1, in.previous)
	}
	return sb.String()
}
