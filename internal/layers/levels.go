package layers

import (
	"fmt"

	"distill/internal/state"
)

// Level describes one refinement step of the distillation ladder.
type Level struct {
	Number      int
	Name        string
	instruction string
}

var levels = [state.LayerCount]Level{
	{
		Number: 1,
		Name:   "Abstract",
		instruction: "Write a single tight paragraph (3-5 sentences) capturing the " +
			"essence of the source. No headings, no lists.",
	},
	{
		Number: 2,
		Name:   "Key Points",
		instruction: "Distill the source into 5-9 bullet points. Each bullet is one " +
			"complete, standalone claim from the source. Order by importance.",
	},
	{
		Number: 3,
		Name:   "Structured Outline",
		instruction: "Produce a markdown outline with short section headings and " +
			"nested bullets that preserve the source's structure and supporting detail.",
	},
	{
		Number: 4,
		Name:   "Plain-Language Explanation",
		instruction: "Explain the source in plain language for a curious reader with " +
			"no background. Short paragraphs, concrete examples, no jargon.",
	},
	{
		Number: 5,
		Name:   "Synthesis",
		instruction: "Synthesize the source into its most useful form: what it means, " +
			"why it matters, and what to do with it. This is the final artifact.",
	},
}

// Levels returns all refinement levels in ascending order.
func Levels() [state.LayerCount]Level {
	return levels
}

// ByNumber returns the level definition for n (1..5).
func ByNumber(n int) (Level, error) {
	if n < 1 || n > state.LayerCount {
		return Level{}, fmt.Errorf("level %d out of range", n)
	}
	return levels[n-1], nil
}
