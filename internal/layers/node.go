package layers

import (
	"context"
	"log/slog"
	"strings"

	"distill/internal/flow"
	"distill/internal/generate"
	"distill/internal/logging"
	"distill/internal/services"
	"distill/internal/state"
	"distill/internal/textutil"
)

// Generator is the narrow slice of the generation client layer nodes use.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts generate.Options) (string, error)
}

// Node produces one refinement level. Five instances run in ascending
// order; each reads the extracted content plus the previous level and
// writes exactly one layer slot. The ordering is enforced by graph
// wiring, not by the node.
type Node struct {
	level  Level
	gen    Generator
	opts   generate.Options
	policy flow.RetryPolicy
	name   string
	logger *slog.Logger
}

// NodeOption customizes a layer node.
type NodeOption func(*Node)

// WithNodeLogger attaches a logger for layer progress events.
func WithNodeLogger(logger *slog.Logger) NodeOption {
	return func(n *Node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNode builds the node for refinement level n (1..5).
func NewNode(n int, gen Generator, opts generate.Options, policy flow.RetryPolicy, nodeOpts ...NodeOption) (*Node, error) {
	level, err := ByNumber(n)
	if err != nil {
		return nil, err
	}
	node := &Node{
		level:  level,
		gen:    gen,
		opts:   opts,
		policy: policy,
		name:   nodeName(n),
		logger: logging.NewNop(),
	}
	for _, opt := range nodeOpts {
		opt(node)
	}
	return node, nil
}

func nodeName(n int) string {
	return "layer-" + string(rune('0'+n))
}

func (n *Node) Name() string { return n.name }

func (n *Node) Prepare(ctx context.Context, st *state.State) (any, error) {
	doc := st.Document()
	if strings.TrimSpace(doc.Content) == "" {
		return nil, services.Wrap(services.ErrValidation, n.name, "prepare", "no extracted content", nil)
	}
	in := promptInput{
		title:       doc.Title,
		content:     doc.Content,
		sections:    doc.Sections,
		focus:       st.Focus(),
		finalFormat: st.FinalFormat(),
	}
	if n.level.Number > 1 {
		previous, err := st.Layer(n.level.Number - 1)
		if err != nil {
			return nil, err
		}
		in.previous = previous
	}
	return in, nil
}

func (n *Node) Execute(ctx context.Context, prepared any) (any, error) {
	in := prepared.(promptInput)
	return n.gen.Complete(ctx, systemPrompt, buildUserPrompt(n.level, in), n.opts)
}

func (n *Node) Finalize(ctx context.Context, st *state.State, prepared, result any) (flow.Outcome, error) {
	text, _ := result.(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", services.Wrap(services.ErrValidation, n.name, "finalize", "empty generation result", nil)
	}
	if err := st.SetLayer(n.level.Number, text); err != nil {
		return "", err
	}
	logging.WithContext(ctx, n.logger).Info("layer generated",
		logging.Int(logging.FieldLevel, n.level.Number),
		logging.String("name", n.level.Name),
		logging.Int("words", textutil.WordCount(text)))
	return flow.DefaultOutcome, nil
}

func (n *Node) RetryPolicy() flow.RetryPolicy { return n.policy }
