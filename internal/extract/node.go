package extract

import (
	"context"
	"log/slog"
	"time"

	"distill/internal/flow"
	"distill/internal/logging"
	"distill/internal/state"
	"distill/internal/textutil"
)

type preparedSource struct {
	source    string
	inputType state.InputType
}

// Node runs extraction and records the document plus the timestamp and
// slug every artifact filename derives from.
type Node struct {
	service Service
	policy  flow.RetryPolicy
	now     func() time.Time
	logger  *slog.Logger
}

// NodeOption customizes the extraction node.
type NodeOption func(*Node)

// WithClock overrides the timestamp source. Tests pin it.
func WithClock(now func() time.Time) NodeOption {
	return func(n *Node) {
		if now != nil {
			n.now = now
		}
	}
}

// WithNodeLogger attaches a logger for degraded-extraction warnings.
func WithNodeLogger(logger *slog.Logger) NodeOption {
	return func(n *Node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNode builds the extraction node around a Service.
func NewNode(service Service, policy flow.RetryPolicy, opts ...NodeOption) *Node {
	n := &Node{
		service: service,
		policy:  policy,
		now:     time.Now,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Node) Name() string { return "extract" }

func (n *Node) Prepare(ctx context.Context, st *state.State) (any, error) {
	return preparedSource{source: st.Source(), inputType: st.InputType()}, nil
}

func (n *Node) Execute(ctx context.Context, prepared any) (any, error) {
	src := prepared.(preparedSource)
	return n.service.Extract(ctx, src.source, src.inputType)
}

func (n *Node) Finalize(ctx context.Context, st *state.State, prepared, result any) (flow.Outcome, error) {
	doc := result.(state.Document)
	if doc.Degraded {
		logging.WithContext(ctx, n.logger).Warn("extraction degraded, proceeding on placeholder content",
			logging.String("title", doc.Title))
	}
	if err := st.SetDocument(doc); err != nil {
		return "", err
	}
	if err := st.SetNaming(n.now().UTC(), textutil.Slugify(doc.Title)); err != nil {
		return "", err
	}
	return flow.DefaultOutcome, nil
}

func (n *Node) RetryPolicy() flow.RetryPolicy { return n.policy }
