package flow

// Outcome is the label a node's finalize phase returns. The engine uses
// it to select the successor in the routing table.
type Outcome string

// DefaultOutcome is the reserved label for a node's unconditional edge.
// Finalize phases that return an empty outcome route through it.
const DefaultOutcome Outcome = "default"

func (o Outcome) orDefault() Outcome {
	if o == "" {
		return DefaultOutcome
	}
	return o
}
